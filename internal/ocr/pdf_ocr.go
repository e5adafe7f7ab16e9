package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

// extractPDF tries the embedded text layer first and falls back to
// rasterize+tesseract when the layer is missing or looks like garbage.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Language: e.cfg.TesseractLang}

	text, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err == nil {
		res.Quality = textQuality(text)
		if res.Quality >= e.cfg.MinTextQuality {
			res.Method = "pdf-text"
			res.Pages = splitPages(path, text)
			return res, nil
		}
		e.logger.Info("ocr.pdf.text_layer_weak", "path", path, "quality", res.Quality)
	} else {
		e.logger.Warn("ocr.pdf.text_layer_failed", "path", path, "error", err)
	}

	pages, warns, err := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return res, err
	}
	res.Method = "pdf-ocr"
	res.Pages = pages
	res.Quality = textQuality(entity.JoinPages(pages))
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return "", []string{string(errb)}, err
	}
	return string(out), nil, nil
}

// splitPages splits pdftotext output on the form-feed page separator.
func splitPages(source, text string) []entity.RawPage {
	parts := strings.Split(text, "\f")
	pages := make([]entity.RawPage, 0, len(parts))
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pages = append(pages, entity.RawPage{Source: source, Page: i + 1, Text: p})
	}
	return pages
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) ([]entity.RawPage, []string, error) {
	tmpDir, err := os.MkdirTemp("", "qx-pp-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("ocr.pdf.tmp_cleanup_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...)
	if err != nil {
		return nil, []string{string(errb)}, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var pages []entity.RawPage
	var warns []string
	for i, img := range matches {
		if err := ctx.Err(); err != nil {
			return pages, warns, err
		}
		txt, w, err := e.ocrPage(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		pages = append(pages, entity.RawPage{Source: path, Page: i + 1, Text: txt})
	}
	if len(pages) == 0 {
		return nil, warns, fmt.Errorf("tesseract produced no text for %d pages", len(matches))
	}
	return pages, warns, nil
}
