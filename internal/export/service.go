package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/pipeline"
)

// Service writes a run's output collections into one directory.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Paths lists the files a Write call produced.
type Paths struct {
	Accepted string
	Review   string
	Workbook string // "" unless requested
}

// Write stores accepted.json and review.json under dir, plus review.xlsx
// when withWorkbook is set.
func (s *Service) Write(dir string, res pipeline.Result, withWorkbook bool) (Paths, error) {
	start := time.Now()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}
	p := Paths{
		Accepted: filepath.Join(dir, AcceptedFile),
		Review:   filepath.Join(dir, ReviewFile),
	}
	if err := WriteQuestions(p.Accepted, res.Accepted); err != nil {
		return p, err
	}
	if err := WriteQuestions(p.Review, res.Review); err != nil {
		return p, err
	}
	if withWorkbook {
		b, err := ReviewWorkbook(res.Review)
		if err != nil {
			return p, err
		}
		p.Workbook = filepath.Join(dir, WorkbookFile)
		if err := writeAtomic(p.Workbook, b); err != nil {
			return p, err
		}
		s.logger.Info("export.xlsx.ok", "path", p.Workbook, "rows", len(res.Review))
	}

	s.logger.Info("export.json.ok",
		"dir", dir,
		"accepted", len(res.Accepted),
		"review", len(res.Review),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return p, nil
}

const reviewSheet = "Review"

var reviewHeaders = []string{
	"Chunk",
	"Number",
	"Question",
	"A",
	"B",
	"C",
	"D",
	"Correct",
	"Explanation",
	"Topic",
	"Reasons",
	"LLM Error",
	"Raw Chunk",
}

// ReviewWorkbook renders review records as an XLSX workbook for manual
// correction, one row per record in chunk order.
func ReviewWorkbook(qs []entity.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), reviewSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, h := range reviewHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(reviewSheet, cell, h)
	}

	for r, q := range qs {
		row := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(reviewSheet, cell, v)
		}
		write(1, q.Provenance.ChunkIndex)
		write(2, q.QuestionNumber)
		write(3, q.QuestionText)
		for i, opt := range q.Options.Slice() {
			write(4+i, opt)
		}
		write(8, strings.ToUpper(q.CorrectOption))
		write(9, q.Explanation)
		write(10, q.Topic)
		write(11, strings.Join(q.ReviewReasons, ", "))
		write(12, q.Provenance.LLMError)
		write(13, truncate(q.Provenance.RawChunk, 2000))
	}

	_ = f.SetColWidth(reviewSheet, "A", "B", 8)  // chunk, number
	_ = f.SetColWidth(reviewSheet, "C", "C", 60) // question
	_ = f.SetColWidth(reviewSheet, "D", "G", 24) // options
	_ = f.SetColWidth(reviewSheet, "H", "H", 8)  // correct
	_ = f.SetColWidth(reviewSheet, "I", "I", 48) // explanation
	_ = f.SetColWidth(reviewSheet, "J", "L", 20) // topic, reasons, llm error
	_ = f.SetColWidth(reviewSheet, "M", "M", 80) // raw

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
