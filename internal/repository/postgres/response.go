package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
)

type ResponseRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewResponseRepository(db *sqlx.DB, log *slog.Logger) *ResponseRepository {
	return &ResponseRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert writes a single answer keyed on (respondent_id, question_id).
// Resubmitting the same question overwrites the previous score and comment,
// never creating a second row.
func (r *ResponseRepository) Upsert(ctx context.Context, ext sqlx.ExtContext, response *domain.Response) error {
	const op = "internal.repository.postgres.Upsert"

	query, args, err := r.sq.Insert("responses").
		Columns("respondent_id", "question_id", "score", "comment", "updated_at").
		Values(response.RespondentID, response.QuestionID, response.Score, response.Comment, response.UpdatedAt).
		Suffix(`ON CONFLICT (respondent_id, question_id) DO UPDATE SET
			score = EXCLUDED.score,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%s: %w: respondent or question", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	return nil
}
