// Package ingest discovers input documents for batch runs.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/constants"
)

// Source is one discovered input document.
type Source struct {
	Path         string
	Format       constants.SourceFormat
	HashHex      string
	Deduplicated bool   // same bytes as an earlier source in this walk
	Err          string // set when the file could not be read
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// AllowedExt checks if a file extension is in the allowed input set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}

// Discover walks root in lexical order and returns every input document.
// Files whose content hash was already seen are marked Deduplicated so the
// same paper is not extracted twice. Unreadable files are reported per
// source and never stop the walk.
func Discover(ctx context.Context, root string, skipHidden bool, logger *slog.Logger) ([]Source, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var sources []Source
	var stats DirStats
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			sources = append(sources, Source{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		src := Source{Path: path, Format: constants.MapExtToFormat(ext)}
		sum, err := hashFile(path)
		if err != nil {
			src.Err = err.Error()
			sources = append(sources, src)
			stats.Failed++
			return nil
		}
		src.HashHex = sum
		if first, dup := seen[sum]; dup {
			src.Deduplicated = true
			stats.Deduplicated++
			logger.Info("ingest.duplicate", "path", path, "same_as", first)
		} else {
			seen[sum] = path
		}
		sources = append(sources, src)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return sources, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("ingest.discover.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return sources, stats, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// OutputDir names the per-source output directory under out: the file name
// without its extension.
func OutputDir(out, path string) string {
	base := filepath.Base(path)
	return filepath.Join(out, strings.TrimSuffix(base, filepath.Ext(base)))
}
