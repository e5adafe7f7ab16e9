package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/exam-extractor/internal/export"
	"github.com/joseph-ayodele/exam-extractor/internal/ocr"
	"github.com/joseph-ayodele/exam-extractor/internal/pipeline"
)

const sky = "7. What color is the sky?\nA) Green\nB) Blue\nC) Red\nD) Yellow\nCORRECT ANSWER: B\nExplanation: Rayleigh scattering."

func TestRunBatch(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	in, out := t.TempDir(), t.TempDir()
	for name, content := range map[string]string{
		"mock1.txt": sky,
		"copy.txt":  sky,
		"mock2.md":  "1. Describe the settlement cycle.",
	} {
		if err := os.WriteFile(filepath.Join(in, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	p := pipeline.New(pipeline.Config{}, nil, nil, logger)
	err := runBatch(context.Background(), p, ocr.NewExtractor(ocr.Config{}, logger), export.NewService(logger), in, out, false, logger)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	// copy.txt sorts first, so mock1.txt is the duplicate
	accepted, err := export.ReadQuestions(filepath.Join(out, "copy", export.AcceptedFile))
	if err != nil {
		t.Fatalf("read accepted: %v", err)
	}
	if len(accepted) != 1 || accepted[0].CorrectOption != "b" {
		t.Fatalf("unexpected accepted records %+v", accepted)
	}
	if _, err := os.Stat(filepath.Join(out, "mock1")); !os.IsNotExist(err) {
		t.Fatalf("expected the duplicate to be skipped, stat err %v", err)
	}
	review, err := export.ReadQuestions(filepath.Join(out, "mock2", export.ReviewFile))
	if err != nil {
		t.Fatalf("read review: %v", err)
	}
	if len(review) != 1 {
		t.Fatalf("expected one review record, got %d", len(review))
	}
}
