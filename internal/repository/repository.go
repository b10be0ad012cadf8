// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/domain"
)

// CycleRepository defines the contract for cycle rows and their membership.
// Methods taking a *sqlx.Tx participate in the caller's transaction; the
// start cascade and every membership mutation must run inside one.
type CycleRepository interface {
	// CreateCycle inserts a cycle in draft status and fills CreatedAt.
	CreateCycle(ctx context.Context, cycle *domain.Cycle) error

	// UpdateCycle rewrites the editable fields (title, description, dates).
	// The status gate is the caller's job, done under GetCycleByIDWithLock.
	UpdateCycle(ctx context.Context, tx *sqlx.Tx, cycle *domain.Cycle) error

	// GetCycleByID returns apperrors.ErrNotFound when the cycle is absent.
	GetCycleByID(ctx context.Context, cycleID string) (*domain.Cycle, error)

	// GetCycleByIDWithLock acquires a row-level lock ("FOR UPDATE") so
	// concurrent starts and membership edits serialize on the cycle row.
	GetCycleByIDWithLock(ctx context.Context, tx *sqlx.Tx, cycleID string) (*domain.Cycle, error)

	// ListCycles returns all cycles newest-first with participant counts.
	ListCycles(ctx context.Context) ([]domain.CycleListItem, error)

	// GetCycleParticipants returns the detail view: every participant of the
	// cycle with their assigned respondents.
	GetCycleParticipants(ctx context.Context, cycleID string) ([]domain.ParticipantWithRespondents, error)

	// CountParticipants counts participant rows of a cycle inside tx.
	CountParticipants(ctx context.Context, tx *sqlx.Tx, cycleID string) (int, error)

	// ActivateCycle flips the cycle and cascades all its participants and
	// respondents to active. Must run inside the caller's transaction so the
	// cascade is all-or-nothing.
	ActivateCycle(ctx context.Context, tx *sqlx.Tx, cycleID string) error

	// AddParticipants upserts (cycle_id, user_id) pairs; re-adding an
	// existing member is a no-op thanks to ON CONFLICT DO NOTHING.
	AddParticipants(ctx context.Context, tx *sqlx.Tx, cycleID string, userIDs []string) error

	// GetParticipant returns a participant row or apperrors.ErrNotFound.
	GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error)

	// AddRespondents upserts (participant_id, respondent_user_id) pairs.
	AddRespondents(ctx context.Context, tx *sqlx.Tx, participantID string, userIDs []string) error

	// RemoveParticipant deletes the participant's respondents, then the
	// participant itself.
	RemoveParticipant(ctx context.Context, tx *sqlx.Tx, cycleID, participantID string) error

	// ListParticipantRecipients returns cycle participants with a resolvable
	// chat username for the start fan-out.
	ListParticipantRecipients(ctx context.Context, cycleID string) ([]domain.StartRecipient, error)

	// ListRespondentRecipients returns respondents with a resolvable chat
	// username plus the name of the participant they will review.
	ListRespondentRecipients(ctx context.Context, cycleID string) ([]domain.StartRecipient, error)
}

// UserDirectory is the read-only view of the users relation the engine needs:
// existence checks for membership edits and username resolution for notifications.
type UserDirectory interface {
	// CountActiveUsers counts how many of the given ids resolve to active
	// users; a mismatch with len(ids) means some id is unknown or inactive.
	CountActiveUsers(ctx context.Context, ext sqlx.ExtContext, userIDs []string) (int, error)
}

// RespondentRepository defines the contract for respondent state transitions
// and the participant roll-up performed on completion.
type RespondentRepository interface {
	GetRespondentByID(ctx context.Context, respondentID string) (*domain.Respondent, error)

	// GetRespondentByIDWithLock locks the respondent row so concurrent
	// submissions for the same respondent serialize.
	GetRespondentByIDWithLock(ctx context.Context, tx *sqlx.Tx, respondentID string) (*domain.Respondent, error)

	// MarkInProgress sets status=in_progress and stamps started_at unless it
	// is already set. Used by both the explicit start and the lazy start so
	// the two paths converge on identical state.
	MarkInProgress(ctx context.Context, ext sqlx.ExtContext, respondentID string, startedAt time.Time) error

	MarkCompleted(ctx context.Context, tx *sqlx.Tx, respondentID string, completedAt time.Time) error

	// GetParticipantWithLock locks the owning participant row. Serializing
	// the sibling check on this lock is what prevents two concurrently
	// completing respondents from both claiming the final completion.
	GetParticipantWithLock(ctx context.Context, tx *sqlx.Tx, participantID string) (*domain.Participant, error)

	// CountSiblings returns (total, completed) respondent counts for a participant.
	CountSiblings(ctx context.Context, tx *sqlx.Tx, participantID string) (int, int, error)

	MarkParticipantCompleted(ctx context.Context, tx *sqlx.Tx, participantID string) error

	// GetCompletionNotice resolves the notification context for a completed
	// participant; Username is nil when the user has no chat account linked.
	GetCompletionNotice(ctx context.Context, participantID string) (*domain.CompletionNotice, error)

	// ListAssessments returns the user's review assignments in active cycles.
	ListAssessments(ctx context.Context, userID string) ([]domain.Assessment, error)
}

// ResponseRepository is the idempotent score store.
type ResponseRepository interface {
	// Upsert performs an atomic insert-or-update keyed on
	// (respondent_id, question_id) and stamps updated_at.
	Upsert(ctx context.Context, ext sqlx.ExtContext, response *domain.Response) error
}

// QuestionCatalog is read-only access to the active question set.
type QuestionCatalog interface {
	// ActiveQuestions returns active questions ordered by category then
	// order_index. An empty categoryID means no filter.
	ActiveQuestions(ctx context.Context, categoryID string) ([]domain.Question, error)

	// ActiveQuestionsWithAnswers merges the active catalog with the
	// respondent's existing responses for survey resumption.
	ActiveQuestionsWithAnswers(ctx context.Context, respondentID string) ([]domain.QuestionWithAnswer, error)

	// GetActiveQuestion returns apperrors.ErrNotFound for missing or
	// deactivated questions.
	GetActiveQuestion(ctx context.Context, questionID string) (*domain.Question, error)
}

// ProgressRepository computes completion counts. The ext argument lets the
// completion check run inside the completing transaction against live data.
type ProgressRepository interface {
	CountActiveQuestions(ctx context.Context, ext sqlx.ExtContext) (int, error)

	// CountAnswered counts the respondent's responses to currently active
	// questions; answers to deactivated questions are kept but not counted.
	CountAnswered(ctx context.Context, ext sqlx.ExtContext, respondentID string) (int, error)

	// CategoryProgress outer-joins active questions against the respondent's
	// responses so unanswered categories appear with answered=0.
	CategoryProgress(ctx context.Context, respondentID string) ([]domain.CategoryProgress, error)
}

// ReportRepository serves the read-only analytics queries. All of them reflect
// the live response store at query time; nothing is cached.
type ReportRepository interface {
	// ParticipantCounts returns (total, completed) participants of a cycle.
	ParticipantCounts(ctx context.Context, cycleID string) (int, int, error)

	CategoryAverages(ctx context.Context, cycleID string) ([]domain.CategoryAverage, error)

	ScoreHistogram(ctx context.Context, cycleID string) ([]domain.ScoreBucket, error)

	// CompletedParticipants lists the cycle's completed participants for comparison.
	CompletedParticipants(ctx context.Context, cycleID string) ([]domain.CompletedParticipant, error)

	// ParticipantCategoryAverages returns per-category averages over all
	// responses collected about one participant.
	ParticipantCategoryAverages(ctx context.Context, participantID string) ([]domain.CategoryAverage, error)

	Summary(ctx context.Context) (*domain.Summary, error)
}
