package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

type QuestionRepository interface {
	// Upsert stores q under paperID keyed by its question text and reports
	// whether a new row was inserted.
	Upsert(ctx context.Context, paperID uuid.UUID, q entity.Question) (bool, error)
	ListByPaper(ctx context.Context, paperID uuid.UUID) ([]entity.Question, error)
}

type questionRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewQuestionRepository(db *DB, logger *slog.Logger) QuestionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &questionRepository{db: db, logger: logger}
}

func (r *questionRepository) Upsert(ctx context.Context, paperID uuid.UUID, q entity.Question) (bool, error) {
	text := strings.TrimSpace(q.QuestionText)
	if text == "" {
		return false, common.InvalidArgumentErrorf("question text is required")
	}

	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return false, dbError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx, r.db.rebind("SELECT id FROM questions WHERE question = ?"), text).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id := q.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err = tx.ExecContext(ctx, r.db.rebind(`INSERT INTO questions
			(id, paper_id, question, option_a, option_b, option_c, option_d, correct_answer, correct_option, explanation, topic)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			id.String(), paperID.String(), text,
			q.Options.A, q.Options.B, q.Options.C, q.Options.D,
			q.AnswerText(), q.CorrectOption, q.Explanation, q.Topic)
		if err != nil {
			return false, dbError("insert question", err)
		}
	case err != nil:
		return false, dbError("lookup question", err)
	default:
		_, err = tx.ExecContext(ctx, r.db.rebind(`UPDATE questions
			SET paper_id = ?, option_a = ?, option_b = ?, option_c = ?, option_d = ?,
			    correct_answer = ?, correct_option = ?, explanation = ?, topic = ?
			WHERE id = ?`),
			paperID.String(),
			q.Options.A, q.Options.B, q.Options.C, q.Options.D,
			q.AnswerText(), q.CorrectOption, q.Explanation, q.Topic, existing)
		if err != nil {
			return false, dbError("update question", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, dbError("commit", err)
	}
	return existing == "", nil
}

func (r *questionRepository) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]entity.Question, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(`SELECT id, question, option_a, option_b, option_c, option_d,
		correct_option, explanation, topic FROM questions WHERE paper_id = ? ORDER BY question`), paperID.String())
	if err != nil {
		return nil, dbError("list questions", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.Question
	for rows.Next() {
		var (
			q  entity.Question
			id string
		)
		if err := rows.Scan(&id, &q.QuestionText, &q.Options.A, &q.Options.B, &q.Options.C, &q.Options.D,
			&q.CorrectOption, &q.Explanation, &q.Topic); err != nil {
			return nil, dbError("scan question", err)
		}
		q.ID, _ = uuid.Parse(id)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list questions", err)
	}
	return out, nil
}

func dbError(op string, err error) error {
	return common.NewAppError("DATABASE_ERROR", op, errors.Join(common.ErrDatabase, err))
}
