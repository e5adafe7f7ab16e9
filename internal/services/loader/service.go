// Package loader pushes accepted questions into the question bank.
package loader

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
	"github.com/joseph-ayodele/exam-extractor/internal/repository"
)

// Service handles loading business logic.
type Service struct {
	papers    repository.PaperRepository
	questions repository.QuestionRepository
	logger    *slog.Logger
}

func NewService(p repository.PaperRepository, q repository.QuestionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{papers: p, questions: q, logger: logger}
}

// Request names the paper to load into and the questions to store.
type Request struct {
	Title        string
	Type         constants.PaperType
	Instructions string
	Questions    []entity.Question
}

type Result struct {
	PaperID  uuid.UUID
	Inserted int
	Updated  int
	Skipped  int
	Total    int // questions on the paper after the load
}

// Load upserts every question with text into the paper named by req.Title,
// creating the paper when needed, then refreshes its question count. Records
// without question text are skipped, not failed.
func (s *Service) Load(ctx context.Context, req Request) (Result, error) {
	title := strings.TrimSpace(req.Title)
	if req.Type == "" {
		req.Type = constants.PaperTypePractice
	}
	paper, err := s.papers.GetOrCreate(ctx, title, req.Type, strings.TrimSpace(req.Instructions))
	if err != nil {
		s.logger.Error("loader.paper.failed", "title", title, "error", err)
		return Result{}, err
	}

	res := Result{PaperID: paper.ID}
	s.logger.Info("loader.start", "paper_id", paper.ID, "title", title, "questions", len(req.Questions))
	for i, q := range req.Questions {
		if err := ctx.Err(); err != nil {
			return res, common.WrapError(err, "load interrupted")
		}
		if strings.TrimSpace(q.QuestionText) == "" {
			res.Skipped++
			continue
		}
		inserted, err := s.questions.Upsert(ctx, paper.ID, q)
		if err != nil {
			s.logger.Error("loader.question.failed", "paper_id", paper.ID, "index", i, "error", err)
			return res, err
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}

	total, err := s.papers.SyncTotal(ctx, paper.ID)
	if err != nil {
		return res, err
	}
	res.Total = total

	s.logger.Info("loader.ok",
		"paper_id", paper.ID,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"total", res.Total,
	)
	return res, nil
}
