package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/ocr"
)

func ocrCMD(opts *rootOptions) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Extract raw text from a PDF without running the question pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			extractor := ocr.NewExtractor(ocrConfig(cfg), logger)
			if missing := extractor.MissingTools(); len(missing) > 0 {
				logger.Warn("ocr.tools.missing", "tools", missing)
			}
			res, err := extractor.Extract(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(res.Text()+"\n"), 0o644); err != nil {
				return common.WrapError(err, "write "+out)
			}
			logger.Info("ocr.done",
				"in", in,
				"out", out,
				"method", res.Method,
				"pages", len(res.Pages),
				"quality", res.Quality,
				"elapsed_ms", res.Duration.Milliseconds(),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input PDF")
	cmd.Flags().StringVar(&out, "out", "", "output text file")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
