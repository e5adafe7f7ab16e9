package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/exam-extractor/internal/classify"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/export"
	"github.com/joseph-ayodele/exam-extractor/internal/ingest"
	"github.com/joseph-ayodele/exam-extractor/internal/llm"
	"github.com/joseph-ayodele/exam-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/exam-extractor/internal/metrics"
	"github.com/joseph-ayodele/exam-extractor/internal/ocr"
	"github.com/joseph-ayodele/exam-extractor/internal/pipeline"
)

func runCMD(opts *rootOptions) *cobra.Command {
	var (
		in            string
		out           string
		workers       int
		xlsx          bool
		requireAnswer bool
		noLLM         bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract questions from a text or PDF file into accepted.json and review.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Pipeline.Workers = workers
			}
			if cmd.Flags().Changed("require-answer") {
				cfg.Pipeline.RequireAnswer = requireAnswer
			}
			if cfg.Pipeline.Workers <= 0 {
				return common.InvalidArgumentErrorf("--workers must be positive")
			}

			reg := prometheus.NewRegistry()
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}

			var newCompleter func() llm.Completer
			if !noLLM {
				newCompleter = openai.NewCompleterFunc(openai.Config{
					APIKey:      cfg.LLM.APIKey,
					BaseURL:     cfg.LLM.BaseURL,
					Model:       cfg.LLM.Model,
					Temperature: cfg.LLM.Temperature,
					Timeout:     cfg.LLM.Timeout,
				}, logger)
			}

			p := pipeline.New(pipeline.Config{
				Workers:    cfg.Pipeline.Workers,
				JobTimeout: cfg.Pipeline.JobTimeout,
				Policy:     classify.Policy{RequireAnswer: cfg.Pipeline.RequireAnswer},
			}, llm.Select(newCompleter, logger), m, logger)

			extractor := ocr.NewExtractor(ocrConfig(cfg), logger)
			exporter := export.NewService(logger)
			defer func() {
				if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
					logger.Warn("metrics.textfile.failed", "error", err)
				}
			}()

			if st, err := os.Stat(in); err == nil && st.IsDir() {
				return runBatch(ctx, p, extractor, exporter, in, out, xlsx, logger)
			}
			res, err := runOne(ctx, p, extractor, exporter, in, out, xlsx, logger)
			if err != nil {
				return err
			}
			if res.Stats.Cancelled {
				return fmt.Errorf("run interrupted after %d of %d chunks: %w",
					res.Stats.Chunks-res.Stats.Skipped, res.Stats.Chunks, context.Canceled)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input file (.txt, .md or .pdf) or a directory of them")
	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent chunk workers")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write review.xlsx")
	cmd.Flags().BoolVar(&requireAnswer, "require-answer", false, "send records without a resolved answer to review")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "skip LLM reconciliation even when a key is configured")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// runOne extracts a single document into outDir. Outputs are flushed even
// when ctx was cancelled mid-run.
func runOne(ctx context.Context, p *pipeline.Pipeline, src pipeline.TextSource, exporter *export.Service, in, outDir string, xlsx bool, logger *slog.Logger) (pipeline.Result, error) {
	res, err := p.RunFile(ctx, src, in)
	if err != nil {
		return res, err
	}
	paths, err := exporter.Write(outDir, res, xlsx)
	if err != nil {
		return res, err
	}
	logger.Info("run.done",
		"in", in,
		"accepted_path", paths.Accepted,
		"review_path", paths.Review,
		"workbook_path", paths.Workbook,
		"accepted", res.Stats.Accepted,
		"review", res.Stats.Review,
		"skipped", res.Stats.Skipped,
		"elapsed_ms", res.Stats.Duration.Round(time.Millisecond).Milliseconds(),
	)
	return res, nil
}

// runBatch runs every document under root, each into its own directory
// below out. A document that cannot be read is logged and skipped.
func runBatch(ctx context.Context, p *pipeline.Pipeline, src pipeline.TextSource, exporter *export.Service, root, out string, xlsx bool, logger *slog.Logger) error {
	sources, stats, err := ingest.Discover(ctx, root, true, logger)
	if err != nil {
		return err
	}
	failed := int(stats.Failed)
	for _, s := range sources {
		if s.Err != "" || s.Deduplicated {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if _, err := runOne(ctx, p, src, exporter, s.Path, ingest.OutputDir(out, s.Path), xlsx, logger); err != nil {
			logger.Error("run.source.failed", "in", s.Path, "error", err)
			failed++
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, stats.Matched)
	}
	return nil
}

func ocrConfig(cfg *common.Config) ocr.Config {
	return ocr.Config{
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		PSM:           6,
	}
}
