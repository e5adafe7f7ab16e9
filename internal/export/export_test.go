package export

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/pipeline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reviewRecord() entity.Question {
	return entity.Question{
		QuestionNumber: "4",
		QuestionText:   "Which planet is largest?",
		Options:        entity.Options{A: "Mars", B: "Jupiter"},
		CorrectOption:  "d",
		ReviewReasons:  []string{"answer_option_empty"},
		Provenance:     entity.Provenance{ChunkIndex: 3, RawChunk: "4. Which planet is largest?"},
	}
}

func TestWriteEmptyCollections(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out")
	s := NewService(quietLogger())
	paths, err := s.Write(dir, pipeline.Result{}, false)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range []string{paths.Accepted, paths.Review} {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if string(b) != "[]\n" {
			t.Fatalf("expected empty array in %s, got %q", p, b)
		}
	}
	if paths.Workbook != "" {
		t.Fatalf("expected no workbook, got %s", paths.Workbook)
	}
}

func TestWriteQuestionsRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ReviewFile)
	in := []entity.Question{reviewRecord()}
	if err := WriteQuestions(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"c": ""`)) {
		t.Fatalf("expected every option key to be written, got %s", raw)
	}
	out, err := ReadQuestions(path)
	if err != nil {
		t.Fatalf("read questions: %v", err)
	}
	if len(out) != 1 || out[0].Options != in[0].Options || out[0].Provenance.ChunkIndex != 3 {
		t.Fatalf("unexpected records %+v", out)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewService(quietLogger())
	res := pipeline.Result{Review: []entity.Question{reviewRecord()}}
	paths, err := s.Write(dir, res, true)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(paths.Workbook)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(reviewSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	if rows[0][2] != "Question" || rows[1][2] != "Which planet is largest?" {
		t.Fatalf("unexpected question column %q / %q", rows[0][2], rows[1][2])
	}
	if rows[1][7] != "D" || rows[1][10] != "answer_option_empty" {
		t.Fatalf("unexpected answer/reasons %q / %q", rows[1][7], rows[1][10])
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("expected %q, got %q", "abc…", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("expected short string unchanged, got %q", got)
	}
}
