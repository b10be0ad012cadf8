package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
	"github.com/review360/assessment-service/internal/repository"
	"github.com/review360/assessment-service/pkg/logger/sl"
)

// Database is what the assessment flow needs from the store: transactions
// for the read-then-write paths and a plain executor for the read-only ones.
// *sqlx.DB satisfies both.
type Database interface {
	Transactor
	sqlx.ExtContext
}

type AssessmentService interface {
	ListAssessments(ctx context.Context, principal domain.Principal) ([]domain.Assessment, error)
	ListQuestions(ctx context.Context, categoryID string) ([]domain.Question, error)
	GetQuestions(ctx context.Context, principal domain.Principal, respondentID string) ([]domain.QuestionWithAnswer, error)
	BeginAssessment(ctx context.Context, principal domain.Principal, respondentID string) error
	SubmitResponse(ctx context.Context, principal domain.Principal, in SubmitResponseInput) error
	CompleteAssessment(ctx context.Context, principal domain.Principal, respondentID string) error
	GetProgress(ctx context.Context, principal domain.Principal, respondentID string) (*domain.Progress, error)
}

type SubmitResponseInput struct {
	RespondentID string
	QuestionID   string
	Score        int
	Comment      *string
}

type AssessmentServiceImpl struct {
	BaseService
	ext         sqlx.ExtContext
	respondents repository.RespondentRepository
	responses   repository.ResponseRepository
	questions   repository.QuestionCatalog
	progress    repository.ProgressRepository
	notifier    Notifier
}

func NewAssessmentService(
	db Database,
	log *slog.Logger,
	respondents repository.RespondentRepository,
	responses repository.ResponseRepository,
	questions repository.QuestionCatalog,
	progress repository.ProgressRepository,
	notifier Notifier,
) *AssessmentServiceImpl {
	return &AssessmentServiceImpl{
		BaseService: NewBaseService(db, log),
		ext:         db,
		respondents: respondents,
		responses:   responses,
		questions:   questions,
		progress:    progress,
		notifier:    notifier,
	}
}

func (s *AssessmentServiceImpl) ListAssessments(ctx context.Context, principal domain.Principal) ([]domain.Assessment, error) {
	const op = "internal.service.assessment.ListAssessments"

	assessments, err := s.respondents.ListAssessments(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list assessments: %w", op, err)
	}

	return assessments, nil
}

// ListQuestions returns the active catalog ordered by category, then by
// order_index. An empty categoryID means no filter.
func (s *AssessmentServiceImpl) ListQuestions(ctx context.Context, categoryID string) ([]domain.Question, error) {
	const op = "internal.service.assessment.ListQuestions"

	questions, err := s.questions.ActiveQuestions(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list questions: %w", op, err)
	}

	return questions, nil
}

func (s *AssessmentServiceImpl) GetQuestions(ctx context.Context, principal domain.Principal, respondentID string) ([]domain.QuestionWithAnswer, error) {
	const op = "internal.service.assessment.GetQuestions"

	respondent, err := s.respondents.GetRespondentByID(ctx, respondentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get respondent: %w", op, err)
	}

	if respondent.UserID != principal.UserID {
		return nil, fmt.Errorf("%w: assessment belongs to another user", apperrors.ErrForbidden)
	}

	questions, err := s.questions.ActiveQuestionsWithAnswers(ctx, respondentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get questions: %w", op, err)
	}

	return questions, nil
}

// BeginAssessment is the explicit start. Submitting a first answer reaches
// the same state lazily; both paths converge on in_progress with started_at
// stamped once.
func (s *AssessmentServiceImpl) BeginAssessment(ctx context.Context, principal domain.Principal, respondentID string) error {
	const op = "internal.service.assessment.BeginAssessment"
	log := s.log.With(slog.String("op", op), slog.String("respondent_id", respondentID))

	respondent, err := s.respondents.GetRespondentByID(ctx, respondentID)
	if err != nil {
		return fmt.Errorf("%s: failed to get respondent: %w", op, err)
	}

	if respondent.UserID != principal.UserID {
		return fmt.Errorf("%w: assessment belongs to another user", apperrors.ErrForbidden)
	}

	if respondent.Status == domain.RespondentInProgress || respondent.Status == domain.RespondentCompleted {
		return fmt.Errorf("%w: assessment already in status '%s'", apperrors.ErrConflict, respondent.Status)
	}

	if err := s.respondents.MarkInProgress(ctx, s.ext, respondentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: failed to mark in progress: %w", op, err)
	}

	log.Info("assessment started")

	return nil
}

func (s *AssessmentServiceImpl) SubmitResponse(ctx context.Context, principal domain.Principal, in SubmitResponseInput) error {
	const op = "internal.service.assessment.SubmitResponse"
	log := s.log.With(slog.String("op", op), slog.String("respondent_id", in.RespondentID), slog.String("question_id", in.QuestionID))

	if in.Score < 1 || in.Score > 5 {
		return &apperrors.ScoreOutOfRangeError{Score: in.Score}
	}

	if _, err := s.questions.GetActiveQuestion(ctx, in.QuestionID); err != nil {
		return fmt.Errorf("%s: failed to get question: %w", op, err)
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		// The row lock serializes concurrent submissions for the same
		// respondent; submissions for different respondents run in parallel.
		respondent, err := s.respondents.GetRespondentByIDWithLock(ctx, tx, in.RespondentID)
		if err != nil {
			return fmt.Errorf("%s: failed to get respondent with lock: %w", op, err)
		}

		if respondent.UserID != principal.UserID {
			return fmt.Errorf("%w: assessment belongs to another user", apperrors.ErrForbidden)
		}

		if respondent.Status == domain.RespondentPending || respondent.Status == domain.RespondentActive {
			if err := s.respondents.MarkInProgress(ctx, tx, in.RespondentID, time.Now().UTC()); err != nil {
				return fmt.Errorf("%s: failed to mark in progress: %w", op, err)
			}
		}

		response := &domain.Response{
			RespondentID: in.RespondentID,
			QuestionID:   in.QuestionID,
			Score:        in.Score,
			Comment:      in.Comment,
			UpdatedAt:    time.Now().UTC(),
		}

		if err := s.responses.Upsert(ctx, tx, response); err != nil {
			return fmt.Errorf("%s: failed to upsert response: %w", op, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	log.Info("response saved", slog.Int("score", in.Score))

	return nil
}

// CompleteAssessment checks full coverage against the current active
// question set, flips the respondent to completed and, when the last
// sibling finishes, completes the participant. The sibling check runs under
// the participant row lock so two concurrent completions cannot both claim
// the final one.
func (s *AssessmentServiceImpl) CompleteAssessment(ctx context.Context, principal domain.Principal, respondentID string) error {
	const op = "internal.service.assessment.CompleteAssessment"
	log := s.log.With(slog.String("op", op), slog.String("respondent_id", respondentID))

	var (
		participantID        string
		participantCompleted bool
		alreadyCompleted     bool
	)

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		respondent, err := s.respondents.GetRespondentByIDWithLock(ctx, tx, respondentID)
		if err != nil {
			return fmt.Errorf("%s: failed to get respondent with lock: %w", op, err)
		}

		if respondent.UserID != principal.UserID {
			return fmt.Errorf("%w: assessment belongs to another user", apperrors.ErrForbidden)
		}

		if respondent.Status == domain.RespondentCompleted {
			alreadyCompleted = true
			return nil
		}

		total, err := s.progress.CountActiveQuestions(ctx, tx)
		if err != nil {
			return fmt.Errorf("%s: failed to count questions: %w", op, err)
		}

		answered, err := s.progress.CountAnswered(ctx, tx, respondentID)
		if err != nil {
			return fmt.Errorf("%s: failed to count answered: %w", op, err)
		}

		if answered < total {
			return &apperrors.IncompleteError{Answered: answered, Total: total}
		}

		if err := s.respondents.MarkCompleted(ctx, tx, respondentID, time.Now().UTC()); err != nil {
			return fmt.Errorf("%s: failed to mark completed: %w", op, err)
		}

		participant, err := s.respondents.GetParticipantWithLock(ctx, tx, respondent.ParticipantID)
		if err != nil {
			return fmt.Errorf("%s: failed to get participant with lock: %w", op, err)
		}

		participantID = participant.ID

		siblingsTotal, siblingsCompleted, err := s.respondents.CountSiblings(ctx, tx, participant.ID)
		if err != nil {
			return fmt.Errorf("%s: failed to count siblings: %w", op, err)
		}

		if siblingsCompleted == siblingsTotal && participant.Status != domain.ParticipantCompleted {
			if err := s.respondents.MarkParticipantCompleted(ctx, tx, participant.ID); err != nil {
				return fmt.Errorf("%s: failed to mark participant completed: %w", op, err)
			}

			participantCompleted = true
		}

		return nil
	})

	if err != nil {
		return err
	}

	if alreadyCompleted {
		log.Info("assessment already completed, returning current state")
		return nil
	}

	log.Info("assessment completed")

	if participantCompleted {
		s.notifyParticipantCompleted(ctx, participantID)
	}

	return nil
}

func (s *AssessmentServiceImpl) notifyParticipantCompleted(ctx context.Context, participantID string) {
	const op = "internal.service.assessment.notifyParticipantCompleted"
	log := s.log.With(slog.String("op", op), slog.String("participant_id", participantID))

	notice, err := s.respondents.GetCompletionNotice(ctx, participantID)
	if err != nil {
		log.Error("failed to resolve completion notice", sl.Err(err))
		return
	}

	if notice.Username == nil {
		log.Info("participant has no chat account linked, skipping notification")
		return
	}

	s.notifier.ParticipantCompleted(*notice.Username, notice.CycleTitle)
}

func (s *AssessmentServiceImpl) GetProgress(ctx context.Context, principal domain.Principal, respondentID string) (*domain.Progress, error) {
	const op = "internal.service.assessment.GetProgress"

	respondent, err := s.respondents.GetRespondentByID(ctx, respondentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get respondent: %w", op, err)
	}

	if respondent.UserID != principal.UserID {
		return nil, fmt.Errorf("%w: assessment belongs to another user", apperrors.ErrForbidden)
	}

	total, err := s.progress.CountActiveQuestions(ctx, s.ext)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count questions: %w", op, err)
	}

	answered, err := s.progress.CountAnswered(ctx, s.ext, respondentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count answered: %w", op, err)
	}

	perCategory, err := s.progress.CategoryProgress(ctx, respondentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get category progress: %w", op, err)
	}

	return &domain.Progress{
		TotalQuestions:    total,
		AnsweredQuestions: answered,
		Percentage:        roundPercentage(answered, total),
		PerCategory:       perCategory,
	}, nil
}

// roundPercentage defines 0 for an empty denominator.
func roundPercentage(answered, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(float64(answered) / float64(total) * 100))
}
