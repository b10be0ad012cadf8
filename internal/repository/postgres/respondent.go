package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
)

type RespondentRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewRespondentRepository(db *sqlx.DB, log *slog.Logger) *RespondentRepository {
	return &RespondentRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RespondentRepository) GetRespondentByID(ctx context.Context, respondentID string) (*domain.Respondent, error) {
	const op = "internal.repository.postgres.GetRespondentByID"

	query, args, err := r.sq.Select("id", "participant_id", "respondent_user_id", "status", "started_at", "completed_at").
		From("respondents").
		Where(sq.Eq{"id": respondentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var respondent domain.Respondent
	if err := r.db.GetContext(ctx, &respondent, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: respondent with id '%s'", op, apperrors.ErrNotFound, respondentID)
		}

		return nil, fmt.Errorf("%s: failed to get respondent: %w", op, err)
	}

	return &respondent, nil
}

func (r *RespondentRepository) GetRespondentByIDWithLock(ctx context.Context, tx *sqlx.Tx, respondentID string) (*domain.Respondent, error) {
	const op = "internal.repository.postgres.GetRespondentByIDWithLock"

	query, args, err := r.sq.Select("id", "participant_id", "respondent_user_id", "status", "started_at", "completed_at").
		From("respondents").
		Where(sq.Eq{"id": respondentID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var respondent domain.Respondent
	if err := tx.GetContext(ctx, &respondent, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: respondent with id '%s'", op, apperrors.ErrNotFound, respondentID)
		}

		return nil, fmt.Errorf("%s: failed to get respondent with lock: %w", op, err)
	}

	return &respondent, nil
}

// MarkInProgress keeps the earliest start time: COALESCE leaves started_at
// alone when a previous call already stamped it.
func (r *RespondentRepository) MarkInProgress(ctx context.Context, ext sqlx.ExtContext, respondentID string, startedAt time.Time) error {
	const op = "internal.repository.postgres.MarkInProgress"

	query, args, err := r.sq.Update("respondents").
		Set("status", domain.RespondentInProgress).
		Set("started_at", sq.Expr("COALESCE(started_at, ?)", startedAt)).
		Where(sq.Eq{"id": respondentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: respondent with id '%s'", op, apperrors.ErrNotFound, respondentID)
	}

	return nil
}

func (r *RespondentRepository) MarkCompleted(ctx context.Context, tx *sqlx.Tx, respondentID string, completedAt time.Time) error {
	const op = "internal.repository.postgres.MarkCompleted"

	query, args, err := r.sq.Update("respondents").
		Set("status", domain.RespondentCompleted).
		Set("completed_at", completedAt).
		Where(sq.Eq{"id": respondentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: respondent with id '%s'", op, apperrors.ErrNotFound, respondentID)
	}

	return nil
}

func (r *RespondentRepository) GetParticipantWithLock(ctx context.Context, tx *sqlx.Tx, participantID string) (*domain.Participant, error) {
	const op = "internal.repository.postgres.GetParticipantWithLock"

	query, args, err := r.sq.Select("id", "cycle_id", "user_id", "status").
		From("participants").
		Where(sq.Eq{"id": participantID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var participant domain.Participant
	if err := tx.GetContext(ctx, &participant, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: participant with id '%s'", op, apperrors.ErrNotFound, participantID)
		}

		return nil, fmt.Errorf("%s: failed to get participant with lock: %w", op, err)
	}

	return &participant, nil
}

func (r *RespondentRepository) CountSiblings(ctx context.Context, tx *sqlx.Tx, participantID string) (int, int, error) {
	const op = "internal.repository.postgres.CountSiblings"

	query, args, err := r.sq.Select(
		"COUNT(*) as total",
		fmt.Sprintf("COUNT(*) FILTER (WHERE status = '%s') as completed", domain.RespondentCompleted),
	).
		From("respondents").
		Where(sq.Eq{"participant_id": participantID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var counts struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	if err := tx.GetContext(ctx, &counts, query, args...); err != nil {
		return 0, 0, fmt.Errorf("%s: failed to count respondents: %w", op, err)
	}

	return counts.Total, counts.Completed, nil
}

func (r *RespondentRepository) MarkParticipantCompleted(ctx context.Context, tx *sqlx.Tx, participantID string) error {
	const op = "internal.repository.postgres.MarkParticipantCompleted"

	query, args, err := r.sq.Update("participants").
		Set("status", domain.ParticipantCompleted).
		Where(sq.Eq{"id": participantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return nil
}

func (r *RespondentRepository) GetCompletionNotice(ctx context.Context, participantID string) (*domain.CompletionNotice, error) {
	const op = "internal.repository.postgres.GetCompletionNotice"

	query, args, err := r.sq.Select(
		"p.id as participant_id",
		"c.title as cycle_title",
		"u.chat_username as username",
	).
		From("participants p").
		Join("cycles c ON c.id = p.cycle_id").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.id": participantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var notice domain.CompletionNotice
	if err := r.db.GetContext(ctx, &notice, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: participant with id '%s'", op, apperrors.ErrNotFound, participantID)
		}

		return nil, fmt.Errorf("%s: failed to get completion notice: %w", op, err)
	}

	return &notice, nil
}

func (r *RespondentRepository) ListAssessments(ctx context.Context, userID string) ([]domain.Assessment, error) {
	const op = "internal.repository.postgres.ListAssessments"

	query, args, err := r.sq.Select(
		"r.id as respondent_id",
		"p.id as participant_id",
		"u.username as participant_name",
		"c.title as cycle_title",
		"c.end_date as cycle_end_date",
		"r.status",
		"r.started_at",
		"r.completed_at",
	).
		From("respondents r").
		Join("participants p ON p.id = r.participant_id").
		Join("cycles c ON c.id = p.cycle_id").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"r.respondent_user_id": userID, "c.status": domain.CycleActive}).
		OrderBy("c.end_date", "u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var assessments []domain.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select assessments: %w", op, err)
	}

	return assessments, nil
}
