package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
)

type CycleRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewCycleRepository(db *sqlx.DB, log *slog.Logger) *CycleRepository {
	return &CycleRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CycleRepository) CreateCycle(ctx context.Context, cycle *domain.Cycle) error {
	const op = "internal.repository.postgres.CreateCycle"

	query, args, err := r.sq.Insert("cycles").
		Columns("id", "title", "description", "start_date", "end_date", "status", "created_by").
		Values(cycle.ID, cycle.Title, cycle.Description, cycle.StartDate, cycle.EndDate, cycle.Status, cycle.CreatedBy).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&cycle.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%s: %w: creator with id '%s'", op, apperrors.ErrNotFound, cycle.CreatedBy)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *CycleRepository) UpdateCycle(ctx context.Context, tx *sqlx.Tx, cycle *domain.Cycle) error {
	const op = "internal.repository.postgres.UpdateCycle"

	query, args, err := r.sq.Update("cycles").
		Set("title", cycle.Title).
		Set("description", cycle.Description).
		Set("start_date", cycle.StartDate).
		Set("end_date", cycle.EndDate).
		Where(sq.Eq{"id": cycle.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: cycle with id '%s'", op, apperrors.ErrNotFound, cycle.ID)
	}

	return nil
}

func (r *CycleRepository) GetCycleByID(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	const op = "internal.repository.postgres.GetCycleByID"

	query, args, err := r.sq.Select("id", "title", "description", "start_date", "end_date", "status", "created_by", "created_at").
		From("cycles").
		Where(sq.Eq{"id": cycleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var cycle domain.Cycle
	if err := r.db.GetContext(ctx, &cycle, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: cycle with id '%s'", op, apperrors.ErrNotFound, cycleID)
		}

		return nil, fmt.Errorf("%s: failed to get cycle: %w", op, err)
	}

	return &cycle, nil
}

func (r *CycleRepository) GetCycleByIDWithLock(ctx context.Context, tx *sqlx.Tx, cycleID string) (*domain.Cycle, error) {
	const op = "internal.repository.postgres.GetCycleByIDWithLock"

	query, args, err := r.sq.Select("id", "title", "description", "start_date", "end_date", "status", "created_by", "created_at").
		From("cycles").
		Where(sq.Eq{"id": cycleID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var cycle domain.Cycle
	if err := tx.GetContext(ctx, &cycle, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: cycle with id '%s'", op, apperrors.ErrNotFound, cycleID)
		}

		return nil, fmt.Errorf("%s: failed to get cycle with lock: %w", op, err)
	}

	return &cycle, nil
}

func (r *CycleRepository) ListCycles(ctx context.Context) ([]domain.CycleListItem, error) {
	const op = "internal.repository.postgres.ListCycles"

	query, args, err := r.sq.Select(
		"c.id", "c.title", "c.description", "c.start_date", "c.end_date",
		"c.status", "c.created_by", "c.created_at",
		"COUNT(p.id) as participant_count",
	).
		From("cycles c").
		LeftJoin("participants p ON p.cycle_id = c.id").
		GroupBy("c.id").
		OrderBy("c.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var cycles []domain.CycleListItem
	if err := r.db.SelectContext(ctx, &cycles, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return cycles, nil
}

func (r *CycleRepository) GetCycleParticipants(ctx context.Context, cycleID string) ([]domain.ParticipantWithRespondents, error) {
	const op = "internal.repository.postgres.GetCycleParticipants"

	participantsQuery, args, err := r.sq.Select(
		"p.id", "p.cycle_id", "p.user_id", "p.status", "u.username",
	).
		From("participants p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.cycle_id": cycleID}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build participants query: %w", op, err)
	}

	var participants []domain.ParticipantWithRespondents
	if err := r.db.SelectContext(ctx, &participants, participantsQuery, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select participants: %w", op, err)
	}

	respondentsQuery, args, err := r.sq.Select(
		"r.id", "r.participant_id", "r.respondent_user_id", "u.username", "r.status",
	).
		From("respondents r").
		Join("participants p ON p.id = r.participant_id").
		Join("users u ON u.id = r.respondent_user_id").
		Where(sq.Eq{"p.cycle_id": cycleID}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build respondents query: %w", op, err)
	}

	var respondents []domain.RespondentMember
	if err := r.db.SelectContext(ctx, &respondents, respondentsQuery, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select respondents: %w", op, err)
	}

	return mapRespondentsToParticipants(participants, respondents), nil
}

func mapRespondentsToParticipants(
	participants []domain.ParticipantWithRespondents,
	respondents []domain.RespondentMember,
) []domain.ParticipantWithRespondents {
	participantMap := make(map[string]*domain.ParticipantWithRespondents, len(participants))
	for i := range participants {
		participantMap[participants[i].ID] = &participants[i]
	}

	for _, respondent := range respondents {
		if p, ok := participantMap[respondent.ParticipantID]; ok {
			p.Respondents = append(p.Respondents, respondent)
		}
	}

	return participants
}

func (r *CycleRepository) CountParticipants(ctx context.Context, tx *sqlx.Tx, cycleID string) (int, error) {
	const op = "internal.repository.postgres.CountParticipants"

	query, args, err := r.sq.Select("COUNT(*)").
		From("participants").
		Where(sq.Eq{"cycle_id": cycleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count participants: %w", op, err)
	}

	return count, nil
}

// ActivateCycle performs the three-step status cascade. It must run inside
// the caller's transaction so either every row transitions or none does.
func (r *CycleRepository) ActivateCycle(ctx context.Context, tx *sqlx.Tx, cycleID string) error {
	const op = "internal.repository.postgres.ActivateCycle"

	cycleQuery, args, err := r.sq.Update("cycles").
		Set("status", domain.CycleActive).
		Where(sq.Eq{"id": cycleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build cycle update: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, cycleQuery, args...); err != nil {
		return fmt.Errorf("%s: failed to activate cycle: %w", op, err)
	}

	participantsQuery, args, err := r.sq.Update("participants").
		Set("status", domain.ParticipantActive).
		Where(sq.Eq{"cycle_id": cycleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build participants update: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, participantsQuery, args...); err != nil {
		return fmt.Errorf("%s: failed to activate participants: %w", op, err)
	}

	respondentsQuery, args, err := r.sq.Update("respondents").
		Set("status", domain.RespondentActive).
		Where(sq.Expr("participant_id IN (SELECT id FROM participants WHERE cycle_id = ?)", cycleID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build respondents update: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, respondentsQuery, args...); err != nil {
		return fmt.Errorf("%s: failed to activate respondents: %w", op, err)
	}

	return nil
}

func (r *CycleRepository) AddParticipants(ctx context.Context, tx *sqlx.Tx, cycleID string, userIDs []string) error {
	const op = "internal.repository.postgres.AddParticipants"

	insertBuilder := r.sq.Insert("participants").
		Columns("id", "cycle_id", "user_id", "status")

	for _, userID := range userIDs {
		insertBuilder = insertBuilder.Values(uuid.NewString(), cycleID, userID, domain.ParticipantPending)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (cycle_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%s: %w: one of the referenced users", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *CycleRepository) GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error) {
	const op = "internal.repository.postgres.GetParticipant"

	query, args, err := r.sq.Select("id", "cycle_id", "user_id", "status").
		From("participants").
		Where(sq.Eq{"id": participantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var participant domain.Participant
	if err := r.db.GetContext(ctx, &participant, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: participant with id '%s'", op, apperrors.ErrNotFound, participantID)
		}

		return nil, fmt.Errorf("%s: failed to get participant: %w", op, err)
	}

	return &participant, nil
}

func (r *CycleRepository) AddRespondents(ctx context.Context, tx *sqlx.Tx, participantID string, userIDs []string) error {
	const op = "internal.repository.postgres.AddRespondents"

	insertBuilder := r.sq.Insert("respondents").
		Columns("id", "participant_id", "respondent_user_id", "status")

	for _, userID := range userIDs {
		insertBuilder = insertBuilder.Values(uuid.NewString(), participantID, userID, domain.RespondentPending)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (participant_id, respondent_user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%s: %w: one of the referenced users", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *CycleRepository) RemoveParticipant(ctx context.Context, tx *sqlx.Tx, cycleID, participantID string) error {
	const op = "internal.repository.postgres.RemoveParticipant"

	respondentsQuery, args, err := r.sq.Delete("respondents").
		Where(sq.Eq{"participant_id": participantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build respondents delete: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, respondentsQuery, args...); err != nil {
		return fmt.Errorf("%s: failed to delete respondents: %w", op, err)
	}

	participantQuery, args, err := r.sq.Delete("participants").
		Where(sq.Eq{"id": participantID, "cycle_id": cycleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build participant delete: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, participantQuery, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete participant: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return fmt.Errorf("%s: %w: participant with id '%s'", op, apperrors.ErrNotFound, participantID)
	}

	return nil
}

func (r *CycleRepository) ListParticipantRecipients(ctx context.Context, cycleID string) ([]domain.StartRecipient, error) {
	const op = "internal.repository.postgres.ListParticipantRecipients"

	query, args, err := r.sq.Select("u.chat_username as username").
		From("participants p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.cycle_id": cycleID}).
		Where("u.chat_username IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var recipients []domain.StartRecipient
	if err := r.db.SelectContext(ctx, &recipients, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select recipients: %w", op, err)
	}

	return recipients, nil
}

func (r *CycleRepository) ListRespondentRecipients(ctx context.Context, cycleID string) ([]domain.StartRecipient, error) {
	const op = "internal.repository.postgres.ListRespondentRecipients"

	query, args, err := r.sq.Select(
		"ru.chat_username as username",
		"r.id as respondent_id",
		"pu.username as participant_name",
	).
		From("respondents r").
		Join("participants p ON p.id = r.participant_id").
		Join("users ru ON ru.id = r.respondent_user_id").
		Join("users pu ON pu.id = p.user_id").
		Where(sq.Eq{"p.cycle_id": cycleID}).
		Where("ru.chat_username IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var recipients []domain.StartRecipient
	if err := r.db.SelectContext(ctx, &recipients, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select recipients: %w", op, err)
	}

	return recipients, nil
}
