// Package export writes pipeline results to disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

const (
	AcceptedFile = "accepted.json"
	ReviewFile   = "review.json"
	WorkbookFile = "review.xlsx"
)

// WriteQuestions writes qs as an indented JSON array. A nil slice is written
// as [] so consumers always see an array. The file is replaced atomically.
func WriteQuestions(path string, qs []entity.Question) error {
	if qs == nil {
		qs = []entity.Question{}
	}
	b, err := json.MarshalIndent(qs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeAtomic(path, append(b, '\n'))
}

// ReadQuestions loads a file written by WriteQuestions.
func ReadQuestions(path string) ([]entity.Question, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var qs []entity.Question
	if err := json.Unmarshal(b, &qs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return qs, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
