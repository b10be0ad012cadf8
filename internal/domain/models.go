package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

// Principal is the authenticated actor passed into every core operation.
// It is resolved by the identity layer in front of this service and is
// never read from ambient state.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) CanManageCycles() bool {
	return p.Role == RoleAdmin || p.Role == RoleHR
}

type CycleStatus string

const (
	CycleDraft     CycleStatus = "draft"
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
)

type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantActive    ParticipantStatus = "active"
	ParticipantCompleted ParticipantStatus = "completed"
)

type RespondentStatus string

const (
	RespondentPending    RespondentStatus = "pending"
	RespondentActive     RespondentStatus = "active"
	RespondentInProgress RespondentStatus = "in_progress"
	RespondentCompleted  RespondentStatus = "completed"
)

type Cycle struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	StartDate   time.Time   `db:"start_date"`
	EndDate     time.Time   `db:"end_date"`
	Status      CycleStatus `db:"status"`
	CreatedBy   string      `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
}

// CycleListItem is a cycle row enriched with its participant count.
type CycleListItem struct {
	Cycle
	ParticipantCount int `db:"participant_count"`
}

type Participant struct {
	ID      string            `db:"id"`
	CycleID string            `db:"cycle_id"`
	UserID  string            `db:"user_id"`
	Status  ParticipantStatus `db:"status"`
}

type Respondent struct {
	ID            string           `db:"id"`
	ParticipantID string           `db:"participant_id"`
	UserID        string           `db:"respondent_user_id"`
	Status        RespondentStatus `db:"status"`
	StartedAt     *time.Time       `db:"started_at"`
	CompletedAt   *time.Time       `db:"completed_at"`
}

// ParticipantWithRespondents is the cycle-detail view: one participant and
// everyone assigned to review them.
type ParticipantWithRespondents struct {
	Participant
	Username    string `db:"username"`
	Respondents []RespondentMember
}

type RespondentMember struct {
	ID            string           `db:"id"`
	ParticipantID string           `db:"participant_id"`
	UserID        string           `db:"respondent_user_id"`
	Username      string           `db:"username"`
	Status        RespondentStatus `db:"status"`
}

type Question struct {
	ID         string `db:"id"`
	CategoryID string `db:"category_id"`
	Category   string `db:"category_name"`
	Text       string `db:"question_text"`
	OrderIndex int    `db:"order_index"`
}

// QuestionWithAnswer merges an active question with the respondent's
// existing response so a partially filled survey can be resumed.
type QuestionWithAnswer struct {
	Question
	Score   *int    `db:"score"`
	Comment *string `db:"comment"`
}

type Response struct {
	RespondentID string    `db:"respondent_id"`
	QuestionID   string    `db:"question_id"`
	Score        int       `db:"score"`
	Comment      *string   `db:"comment"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Assessment is the respondent-facing list item: one review assignment
// with enough context to render it.
type Assessment struct {
	RespondentID    string           `db:"respondent_id"`
	ParticipantID   string           `db:"participant_id"`
	ParticipantName string           `db:"participant_name"`
	CycleTitle      string           `db:"cycle_title"`
	CycleEndDate    time.Time        `db:"cycle_end_date"`
	Status          RespondentStatus `db:"status"`
	StartedAt       *time.Time       `db:"started_at"`
	CompletedAt     *time.Time       `db:"completed_at"`
}

type CategoryProgress struct {
	CategoryID   string `db:"category_id"`
	CategoryName string `db:"category_name"`
	Total        int    `db:"total"`
	Answered     int    `db:"answered"`
}

type Progress struct {
	TotalQuestions    int
	AnsweredQuestions int
	Percentage        int
	PerCategory       []CategoryProgress
}

type CategoryAverage struct {
	CategoryID   string  `db:"category_id"`
	CategoryName string  `db:"category_name"`
	AverageScore float64 `db:"avg_score"`
}

type ScoreBucket struct {
	Score int `db:"score"`
	Count int `db:"count"`
}

type CycleAnalytics struct {
	CycleID          string
	ParticipantCount int
	CompletedCount   int
	CompletionRate   int
	PerCategory      []CategoryAverage
	ScoreHistogram   []ScoreBucket
	OverallAverage   float64
}

// ParticipantScore is one row of the cycle comparison: a completed
// participant with their per-category and overall averages.
type ParticipantScore struct {
	ParticipantID string
	UserID        string
	Username      string
	OverallScore  float64
	PerCategory   []CategoryAverage
}

type Summary struct {
	CyclesTotal       int
	CyclesActive      int
	ParticipantsTotal int
	ResponsesTotal    int
	OverallAverage    float64
}

// CompletionNotice is the context needed to notify a participant that all
// their respondents have finished. Username is nil when the participant's
// user has no chat account linked, in which case the notification is skipped.
type CompletionNotice struct {
	ParticipantID string  `db:"participant_id"`
	CycleTitle    string  `db:"cycle_title"`
	Username      *string `db:"username"`
}

type CompletedParticipant struct {
	ParticipantID string `db:"participant_id"`
	UserID        string `db:"user_id"`
	Username      string `db:"username"`
}

// StartRecipient is one notification target of the cycle-start fan-out.
type StartRecipient struct {
	Username        string `db:"username"`
	RespondentID    string `db:"respondent_id"`
	ParticipantName string `db:"participant_name"`
}
