package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/domain"
)

type ProgressRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewProgressRepository(db *sqlx.DB, log *slog.Logger) *ProgressRepository {
	return &ProgressRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ProgressRepository) CountActiveQuestions(ctx context.Context, ext sqlx.ExtContext) (int, error) {
	const op = "internal.repository.postgres.CountActiveQuestions"

	query, args, err := r.sq.Select("COUNT(*)").
		From("questions").
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, ext, &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count questions: %w", op, err)
	}

	return count, nil
}

// CountAnswered joins against the active question set so answers to since
// deactivated questions are kept in storage but never counted as progress.
func (r *ProgressRepository) CountAnswered(ctx context.Context, ext sqlx.ExtContext, respondentID string) (int, error) {
	const op = "internal.repository.postgres.CountAnswered"

	query, args, err := r.sq.Select("COUNT(*)").
		From("responses r").
		Join("questions q ON q.id = r.question_id").
		Where(sq.Eq{"r.respondent_id": respondentID, "q.is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, ext, &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count responses: %w", op, err)
	}

	return count, nil
}

func (r *ProgressRepository) CategoryProgress(ctx context.Context, respondentID string) ([]domain.CategoryProgress, error) {
	const op = "internal.repository.postgres.CategoryProgress"

	query, args, err := r.sq.Select(
		"c.id as category_id",
		"c.name as category_name",
		"COUNT(q.id) as total",
		"COUNT(r.question_id) as answered",
	).
		From("categories c").
		Join("questions q ON q.category_id = c.id AND q.is_active = true").
		LeftJoin("responses r ON r.question_id = q.id AND r.respondent_id = ?", respondentID).
		GroupBy("c.id", "c.name").
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var progress []domain.CategoryProgress
	if err := r.db.SelectContext(ctx, &progress, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select category progress: %w", op, err)
	}

	return progress, nil
}
