package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Answer boxes and rule lines on scanned exam sheets come back as runs of
// underscores or dashes.
var reRuleLine = regexp.MustCompile(`(?m)^[ \t]*[_\-=]{3,}[ \t]*$`)

// tesseractArgs builds "tesseract <img> stdout -l <lang> [--psm n] [--tessdata-dir d]".
func (e *Extractor) tesseractArgs(img string) []string {
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

// ocrPage recognizes one rendered page image. Stderr is returned as a warning
// on failure.
func (e *Extractor) ocrPage(ctx context.Context, img string) (string, []string, error) {
	out, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, e.tesseractArgs(img)...)
	if err != nil {
		return "", []string{truncate(strings.TrimSpace(string(stderr)), 200)}, fmt.Errorf("tesseract %s: %w", filepath.Base(img), err)
	}
	text := reRuleLine.ReplaceAllString(string(out), "")
	return strings.ReplaceAll(text, "\f", "\n"), nil, nil
}
