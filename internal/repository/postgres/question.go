package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
)

type QuestionCatalog struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewQuestionCatalog(db *sqlx.DB, log *slog.Logger) *QuestionCatalog {
	return &QuestionCatalog{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *QuestionCatalog) ActiveQuestions(ctx context.Context, categoryID string) ([]domain.Question, error) {
	const op = "internal.repository.postgres.ActiveQuestions"

	builder := r.sq.Select(
		"q.id", "q.category_id", "c.name as category_name", "q.question_text", "q.order_index",
	).
		From("questions q").
		Join("categories c ON c.id = q.category_id").
		Where(sq.Eq{"q.is_active": true}).
		OrderBy("c.name", "q.order_index")

	if categoryID != "" {
		builder = builder.Where(sq.Eq{"q.category_id": categoryID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var questions []domain.Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select questions: %w", op, err)
	}

	return questions, nil
}

func (r *QuestionCatalog) ActiveQuestionsWithAnswers(ctx context.Context, respondentID string) ([]domain.QuestionWithAnswer, error) {
	const op = "internal.repository.postgres.ActiveQuestionsWithAnswers"

	query, args, err := r.sq.Select(
		"q.id", "q.category_id", "c.name as category_name", "q.question_text", "q.order_index",
		"r.score", "r.comment",
	).
		From("questions q").
		Join("categories c ON c.id = q.category_id").
		LeftJoin("responses r ON r.question_id = q.id AND r.respondent_id = ?", respondentID).
		Where(sq.Eq{"q.is_active": true}).
		OrderBy("c.name", "q.order_index").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var questions []domain.QuestionWithAnswer
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select questions: %w", op, err)
	}

	return questions, nil
}

func (r *QuestionCatalog) GetActiveQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	const op = "internal.repository.postgres.GetActiveQuestion"

	query, args, err := r.sq.Select(
		"q.id", "q.category_id", "c.name as category_name", "q.question_text", "q.order_index",
	).
		From("questions q").
		Join("categories c ON c.id = q.category_id").
		Where(sq.Eq{"q.id": questionID, "q.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var question domain.Question
	if err := r.db.GetContext(ctx, &question, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: active question with id '%s'", op, apperrors.ErrNotFound, questionID)
		}

		return nil, fmt.Errorf("%s: failed to get question: %w", op, err)
	}

	return &question, nil
}
