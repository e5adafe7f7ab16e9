package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit
	PSM           int // e.g., 6 is good for uniform block of text

	// MinTextQuality is the text-layer quality below which a PDF is
	// rasterized and OCR'd instead. Default 0.35.
	MinTextQuality float32
}

type ExtractionResult struct {
	Pages      []entity.RawPage
	SourceType constants.SourceFormat
	Method     string // "text" | "pdf-text" | "pdf-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Quality    float32
}

// Text joins all pages into one document.
func (r ExtractionResult) Text() string {
	return entity.JoinPages(r.Pages)
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{}, logger)
}

// NewExtractorWithRunner is NewExtractor with an explicit command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextQuality <= 0 {
		cfg.MinTextQuality = 0.35
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract picks a strategy based on file extension. Any failure to read the
// source is reported as common.ErrSourceUnavailable.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	if _, err := os.Stat(path); err != nil {
		return ExtractionResult{}, common.SourceUnavailableError(path, err)
	}

	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		if err != nil {
			return res, common.SourceUnavailableError(path, err)
		}
		e.logger.Info("ocr.extract.ok",
			"path", path,
			"method", res.Method,
			"pages", len(res.Pages),
			"quality", res.Quality,
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		return res, nil
	case constants.TEXT:
		b, err := os.ReadFile(path)
		if err != nil {
			return ExtractionResult{}, common.SourceUnavailableError(path, err)
		}
		return ExtractionResult{
			Pages:      []entity.RawPage{{Source: path, Page: 1, Text: string(b)}},
			SourceType: constants.TEXT,
			Method:     "text",
			Duration:   time.Since(start),
			Quality:    textQuality(string(b)),
		}, nil
	default:
		e.logger.Error("ocr.extract.unsupported", "extension", ext)
		return ExtractionResult{}, common.SourceUnavailableError(path, fmt.Errorf("unsupported extension: %q", ext))
	}
}
