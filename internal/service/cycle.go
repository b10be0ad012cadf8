package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
	"github.com/review360/assessment-service/internal/repository"
	"github.com/review360/assessment-service/pkg/logger/sl"
)

type CycleService interface {
	CreateCycle(ctx context.Context, principal domain.Principal, in CreateCycleInput) (*domain.Cycle, error)
	UpdateCycle(ctx context.Context, principal domain.Principal, cycleID string, in UpdateCycleInput) (*domain.Cycle, error)
	AddParticipants(ctx context.Context, principal domain.Principal, cycleID string, userIDs []string) error
	AddRespondents(ctx context.Context, principal domain.Principal, participantID string, userIDs []string) error
	StartCycle(ctx context.Context, principal domain.Principal, cycleID string) (*domain.Cycle, error)
	GetCycle(ctx context.Context, cycleID string) (*CycleDetail, error)
	ListCycles(ctx context.Context) ([]domain.CycleListItem, error)
	RemoveParticipant(ctx context.Context, principal domain.Principal, cycleID, participantID string) error
}

type CreateCycleInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

type UpdateCycleInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// CycleDetail is the full cycle view: the cycle row plus every participant
// with their assigned respondents.
type CycleDetail struct {
	Cycle        *domain.Cycle
	Participants []domain.ParticipantWithRespondents
}

type CycleServiceImpl struct {
	BaseService
	cycles   repository.CycleRepository
	users    repository.UserDirectory
	notifier Notifier
}

func NewCycleService(
	db Transactor,
	log *slog.Logger,
	cycles repository.CycleRepository,
	users repository.UserDirectory,
	notifier Notifier,
) *CycleServiceImpl {
	return &CycleServiceImpl{
		BaseService: NewBaseService(db, log),
		cycles:      cycles,
		users:       users,
		notifier:    notifier,
	}
}

func (s *CycleServiceImpl) CreateCycle(ctx context.Context, principal domain.Principal, in CreateCycleInput) (*domain.Cycle, error) {
	const op = "internal.service.cycle.CreateCycle"
	log := s.log.With(slog.String("op", op), slog.String("actor_id", principal.UserID))

	if !principal.CanManageCycles() {
		return nil, fmt.Errorf("%w: role '%s' cannot manage cycles", apperrors.ErrForbidden, principal.Role)
	}

	if !in.EndDate.After(in.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}

	cycle := &domain.Cycle{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      domain.CycleDraft,
		CreatedBy:   principal.UserID,
	}

	if err := s.cycles.CreateCycle(ctx, cycle); err != nil {
		return nil, fmt.Errorf("%s: failed to create cycle: %w", op, err)
	}

	log.Info("cycle created", slog.String("cycle_id", cycle.ID))

	return cycle, nil
}

func (s *CycleServiceImpl) UpdateCycle(ctx context.Context, principal domain.Principal, cycleID string, in UpdateCycleInput) (*domain.Cycle, error) {
	const op = "internal.service.cycle.UpdateCycle"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", cycleID))

	if !principal.CanManageCycles() {
		return nil, fmt.Errorf("%w: role '%s' cannot manage cycles", apperrors.ErrForbidden, principal.Role)
	}

	if !in.EndDate.After(in.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}

	var cycle *domain.Cycle

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		var err error

		cycle, err = s.cycles.GetCycleByIDWithLock(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("%s: failed to get cycle with lock: %w", op, err)
		}

		if cycle.Status != domain.CycleDraft {
			return fmt.Errorf("%w: cycle in status '%s' cannot be edited", apperrors.ErrInvalidTransition, cycle.Status)
		}

		cycle.Title = in.Title
		cycle.Description = in.Description
		cycle.StartDate = in.StartDate
		cycle.EndDate = in.EndDate

		if err := s.cycles.UpdateCycle(ctx, tx, cycle); err != nil {
			return fmt.Errorf("%s: failed to update cycle: %w", op, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Info("cycle updated")

	return cycle, nil
}

func (s *CycleServiceImpl) AddParticipants(ctx context.Context, principal domain.Principal, cycleID string, userIDs []string) error {
	const op = "internal.service.cycle.AddParticipants"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", cycleID))

	if !principal.CanManageCycles() {
		return fmt.Errorf("%w: role '%s' cannot manage cycles", apperrors.ErrForbidden, principal.Role)
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		cycle, err := s.cycles.GetCycleByIDWithLock(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("%s: failed to get cycle with lock: %w", op, err)
		}

		if cycle.Status != domain.CycleDraft {
			return fmt.Errorf("%w: membership is locked once the cycle leaves draft", apperrors.ErrInvalidTransition)
		}

		count, err := s.users.CountActiveUsers(ctx, tx, userIDs)
		if err != nil {
			return fmt.Errorf("%s: failed to count users: %w", op, err)
		}

		if count != len(userIDs) {
			return fmt.Errorf("%w: some user ids do not resolve to active users", apperrors.ErrNotFound)
		}

		if err := s.cycles.AddParticipants(ctx, tx, cycleID, userIDs); err != nil {
			return fmt.Errorf("%s: failed to add participants: %w", op, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	log.Info("participants added", slog.Int("count", len(userIDs)))

	return nil
}

func (s *CycleServiceImpl) AddRespondents(ctx context.Context, principal domain.Principal, participantID string, userIDs []string) error {
	const op = "internal.service.cycle.AddRespondents"
	log := s.log.With(slog.String("op", op), slog.String("participant_id", participantID))

	if !principal.CanManageCycles() {
		return fmt.Errorf("%w: role '%s' cannot manage cycles", apperrors.ErrForbidden, principal.Role)
	}

	participant, err := s.cycles.GetParticipant(ctx, participantID)
	if err != nil {
		return fmt.Errorf("%s: failed to get participant: %w", op, err)
	}

	err = s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		cycle, err := s.cycles.GetCycleByIDWithLock(ctx, tx, participant.CycleID)
		if err != nil {
			return fmt.Errorf("%s: failed to get cycle with lock: %w", op, err)
		}

		if cycle.Status != domain.CycleDraft {
			return fmt.Errorf("%w: membership is locked once the cycle leaves draft", apperrors.ErrInvalidTransition)
		}

		count, err := s.users.CountActiveUsers(ctx, tx, userIDs)
		if err != nil {
			return fmt.Errorf("%s: failed to count users: %w", op, err)
		}

		if count != len(userIDs) {
			return fmt.Errorf("%w: some user ids do not resolve to active users", apperrors.ErrNotFound)
		}

		if err := s.cycles.AddRespondents(ctx, tx, participantID, userIDs); err != nil {
			return fmt.Errorf("%s: failed to add respondents: %w", op, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	log.Info("respondents added", slog.Int("count", len(userIDs)))

	return nil
}

// StartCycle performs the draft→active cascade and, after the transaction
// commits, fires the start fan-out. Notification delivery never blocks or
// fails the transition.
func (s *CycleServiceImpl) StartCycle(ctx context.Context, principal domain.Principal, cycleID string) (*domain.Cycle, error) {
	const op = "internal.service.cycle.StartCycle"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", cycleID))

	if !principal.CanManageCycles() {
		return nil, fmt.Errorf("%w: role '%s' cannot manage cycles", apperrors.ErrForbidden, principal.Role)
	}

	var cycle *domain.Cycle

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		var err error

		cycle, err = s.cycles.GetCycleByIDWithLock(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("%s: failed to get cycle with lock: %w", op, err)
		}

		if cycle.Status != domain.CycleDraft {
			return fmt.Errorf("%w: cycle already in status '%s'", apperrors.ErrConflict, cycle.Status)
		}

		count, err := s.cycles.CountParticipants(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("%s: failed to count participants: %w", op, err)
		}

		if count == 0 {
			return fmt.Errorf("%w: cycle has no participants", apperrors.ErrPreconditionFailed)
		}

		if err := s.cycles.ActivateCycle(ctx, tx, cycleID); err != nil {
			return fmt.Errorf("%s: failed to activate cycle: %w", op, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	cycle.Status = domain.CycleActive

	log.Info("cycle started")

	s.notifyCycleStarted(ctx, cycle)

	return cycle, nil
}

func (s *CycleServiceImpl) notifyCycleStarted(ctx context.Context, cycle *domain.Cycle) {
	const op = "internal.service.cycle.notifyCycleStarted"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", cycle.ID))

	participants, err := s.cycles.ListParticipantRecipients(ctx, cycle.ID)
	if err != nil {
		log.Error("failed to list participant recipients", sl.Err(err))
	}

	for _, recipient := range participants {
		s.notifier.CycleStarted(recipient.Username, cycle.Title)
	}

	respondents, err := s.cycles.ListRespondentRecipients(ctx, cycle.ID)
	if err != nil {
		log.Error("failed to list respondent recipients", sl.Err(err))
	}

	for _, recipient := range respondents {
		s.notifier.AssessmentRequested(recipient.Username, recipient.ParticipantName, cycle.Title, recipient.RespondentID)
	}
}

func (s *CycleServiceImpl) GetCycle(ctx context.Context, cycleID string) (*CycleDetail, error) {
	const op = "internal.service.cycle.GetCycle"

	cycle, err := s.cycles.GetCycleByID(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get cycle: %w", op, err)
	}

	participants, err := s.cycles.GetCycleParticipants(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get cycle participants: %w", op, err)
	}

	return &CycleDetail{
		Cycle:        cycle,
		Participants: participants,
	}, nil
}

func (s *CycleServiceImpl) ListCycles(ctx context.Context) ([]domain.CycleListItem, error) {
	const op = "internal.service.cycle.ListCycles"

	cycles, err := s.cycles.ListCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list cycles: %w", op, err)
	}

	return cycles, nil
}

func (s *CycleServiceImpl) RemoveParticipant(ctx context.Context, principal domain.Principal, cycleID, participantID string) error {
	const op = "internal.service.cycle.RemoveParticipant"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", cycleID), slog.String("participant_id", participantID))

	if !principal.CanManageCycles() {
		return fmt.Errorf("%w: role '%s' cannot manage cycles", apperrors.ErrForbidden, principal.Role)
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		cycle, err := s.cycles.GetCycleByIDWithLock(ctx, tx, cycleID)
		if err != nil {
			return fmt.Errorf("%s: failed to get cycle with lock: %w", op, err)
		}

		if cycle.Status != domain.CycleDraft {
			return fmt.Errorf("%w: membership is locked once the cycle leaves draft", apperrors.ErrInvalidTransition)
		}

		if err := s.cycles.RemoveParticipant(ctx, tx, cycleID, participantID); err != nil {
			return fmt.Errorf("%s: failed to remove participant: %w", op, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	log.Info("participant removed")

	return nil
}
