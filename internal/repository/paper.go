package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/constants"
	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

type PaperRepository interface {
	GetOrCreate(ctx context.Context, title string, paperType constants.PaperType, instructions string) (*entity.Paper, error)
	GetByTitle(ctx context.Context, title string) (*entity.Paper, error)
	SyncTotal(ctx context.Context, paperID uuid.UUID) (int, error)
}

type paperRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewPaperRepository(db *DB, logger *slog.Logger) PaperRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &paperRepository{db: db, logger: logger}
}

const paperColumns = "paper_id, title, type, instructions, total_questions"

func (r *paperRepository) GetByTitle(ctx context.Context, title string) (*entity.Paper, error) {
	row := r.db.SQL.QueryRowContext(ctx,
		r.db.rebind("SELECT "+paperColumns+" FROM papers WHERE title = ?"), title)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "paper "+title, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DATABASE_ERROR", "get paper", errors.Join(common.ErrDatabase, err))
	}
	return p, nil
}

// GetOrCreate returns the paper with title, inserting it first if needed.
func (r *paperRepository) GetOrCreate(ctx context.Context, title string, paperType constants.PaperType, instructions string) (*entity.Paper, error) {
	v := common.NewValidator()
	v.Field("title", title, common.Required, common.MaxLength(500))
	v.Field("type", string(paperType), common.OneOf(constants.PaperTypes...))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	p, err := r.GetByTitle(ctx, title)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	id := uuid.New()
	_, err = r.db.SQL.ExecContext(ctx, r.db.rebind(
		"INSERT INTO papers (paper_id, title, type, instructions, total_questions) VALUES (?, ?, ?, ?, 0) ON CONFLICT (title) DO NOTHING"),
		id.String(), title, string(paperType), instructions)
	if err != nil {
		return nil, common.NewAppError("DATABASE_ERROR", "create paper", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Info("db.paper.created", "paper_id", id, "title", title, "type", paperType)
	// a concurrent loader may have won the insert; read back whichever row exists
	return r.GetByTitle(ctx, title)
}

// SyncTotal recounts the paper's questions and stores the count.
func (r *paperRepository) SyncTotal(ctx context.Context, paperID uuid.UUID) (int, error) {
	var n int
	if err := r.db.SQL.QueryRowContext(ctx,
		r.db.rebind("SELECT COUNT(*) FROM questions WHERE paper_id = ?"), paperID.String()).Scan(&n); err != nil {
		return 0, common.NewAppError("DATABASE_ERROR", "count questions", errors.Join(common.ErrDatabase, err))
	}
	if _, err := r.db.SQL.ExecContext(ctx,
		r.db.rebind("UPDATE papers SET total_questions = ? WHERE paper_id = ?"), n, paperID.String()); err != nil {
		return 0, common.NewAppError("DATABASE_ERROR", "update total", errors.Join(common.ErrDatabase, err))
	}
	return n, nil
}

func scanPaper(row *sql.Row) (*entity.Paper, error) {
	var (
		p       entity.Paper
		id, typ string
	)
	if err := row.Scan(&id, &p.Title, &typ, &p.Instructions, &p.TotalQuestions); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("paper id %q: %w", id, err)
	}
	p.ID = parsed
	p.Type = constants.PaperType(typ)
	return &p, nil
}
