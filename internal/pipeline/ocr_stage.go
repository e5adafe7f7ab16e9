package pipeline

import (
	"context"

	"github.com/joseph-ayodele/exam-extractor/internal/ocr"
)

// TextSource turns an input document into raw pages. *ocr.Extractor
// implements it.
type TextSource interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// RunFile extracts pages from path and runs the pipeline over them. The only
// error is an unreadable source, returned before any chunk is processed.
func (p *Pipeline) RunFile(ctx context.Context, src TextSource, path string) (Result, error) {
	res, err := src.Extract(ctx, path)
	if err != nil {
		p.logger.Error("pipeline.source.failed", "path", path, "error", err)
		return Result{}, err
	}
	for _, w := range res.Warnings {
		p.logger.Warn("pipeline.source.warning", "path", path, "warning", w)
	}
	p.logger.Info("pipeline.source.ok",
		"path", path,
		"method", res.Method,
		"pages", len(res.Pages),
		"quality", res.Quality,
	)
	return p.RunPages(ctx, res)
}

// RunPages joins the pages and runs the pipeline over the result.
func (p *Pipeline) RunPages(ctx context.Context, res ocr.ExtractionResult) (Result, error) {
	return p.Run(ctx, res.Text()), nil
}
