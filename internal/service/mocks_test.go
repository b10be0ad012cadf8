package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/domain"
	"github.com/review360/assessment-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type TransactorMock struct {
	mock.Mock
}

func (m *TransactorMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	var tx *sqlx.Tx

	args := m.Called(ctx, opts)
	if args.Get(0) != nil {
		tx = args.Get(0).(*sqlx.Tx)
	}

	return tx, args.Error(1)
}

type CycleRepositoryMock struct {
	mock.Mock
}

var _ repository.CycleRepository = (*CycleRepositoryMock)(nil)

func (m *CycleRepositoryMock) CreateCycle(ctx context.Context, cycle *domain.Cycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

func (m *CycleRepositoryMock) UpdateCycle(ctx context.Context, tx *sqlx.Tx, cycle *domain.Cycle) error {
	args := m.Called(ctx, tx, cycle)
	return args.Error(0)
}

func (m *CycleRepositoryMock) GetCycleByID(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *CycleRepositoryMock) GetCycleByIDWithLock(ctx context.Context, tx *sqlx.Tx, cycleID string) (*domain.Cycle, error) {
	args := m.Called(ctx, tx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *CycleRepositoryMock) ListCycles(ctx context.Context) ([]domain.CycleListItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CycleListItem), args.Error(1)
}

func (m *CycleRepositoryMock) GetCycleParticipants(ctx context.Context, cycleID string) ([]domain.ParticipantWithRespondents, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.ParticipantWithRespondents), args.Error(1)
}

func (m *CycleRepositoryMock) CountParticipants(ctx context.Context, tx *sqlx.Tx, cycleID string) (int, error) {
	args := m.Called(ctx, tx, cycleID)
	return args.Int(0), args.Error(1)
}

func (m *CycleRepositoryMock) ActivateCycle(ctx context.Context, tx *sqlx.Tx, cycleID string) error {
	args := m.Called(ctx, tx, cycleID)
	return args.Error(0)
}

func (m *CycleRepositoryMock) AddParticipants(ctx context.Context, tx *sqlx.Tx, cycleID string, userIDs []string) error {
	args := m.Called(ctx, tx, cycleID, userIDs)
	return args.Error(0)
}

func (m *CycleRepositoryMock) GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Participant), args.Error(1)
}

func (m *CycleRepositoryMock) AddRespondents(ctx context.Context, tx *sqlx.Tx, participantID string, userIDs []string) error {
	args := m.Called(ctx, tx, participantID, userIDs)
	return args.Error(0)
}

func (m *CycleRepositoryMock) RemoveParticipant(ctx context.Context, tx *sqlx.Tx, cycleID, participantID string) error {
	args := m.Called(ctx, tx, cycleID, participantID)
	return args.Error(0)
}

func (m *CycleRepositoryMock) ListParticipantRecipients(ctx context.Context, cycleID string) ([]domain.StartRecipient, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.StartRecipient), args.Error(1)
}

func (m *CycleRepositoryMock) ListRespondentRecipients(ctx context.Context, cycleID string) ([]domain.StartRecipient, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.StartRecipient), args.Error(1)
}

type UserDirectoryMock struct {
	mock.Mock
}

var _ repository.UserDirectory = (*UserDirectoryMock)(nil)

func (m *UserDirectoryMock) CountActiveUsers(ctx context.Context, ext sqlx.ExtContext, userIDs []string) (int, error) {
	args := m.Called(ctx, ext, userIDs)
	return args.Int(0), args.Error(1)
}

type RespondentRepositoryMock struct {
	mock.Mock
}

var _ repository.RespondentRepository = (*RespondentRepositoryMock)(nil)

func (m *RespondentRepositoryMock) GetRespondentByID(ctx context.Context, respondentID string) (*domain.Respondent, error) {
	args := m.Called(ctx, respondentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Respondent), args.Error(1)
}

func (m *RespondentRepositoryMock) GetRespondentByIDWithLock(ctx context.Context, tx *sqlx.Tx, respondentID string) (*domain.Respondent, error) {
	args := m.Called(ctx, tx, respondentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Respondent), args.Error(1)
}

func (m *RespondentRepositoryMock) MarkInProgress(ctx context.Context, ext sqlx.ExtContext, respondentID string, startedAt time.Time) error {
	args := m.Called(ctx, ext, respondentID, startedAt)
	return args.Error(0)
}

func (m *RespondentRepositoryMock) MarkCompleted(ctx context.Context, tx *sqlx.Tx, respondentID string, completedAt time.Time) error {
	args := m.Called(ctx, tx, respondentID, completedAt)
	return args.Error(0)
}

func (m *RespondentRepositoryMock) GetParticipantWithLock(ctx context.Context, tx *sqlx.Tx, participantID string) (*domain.Participant, error) {
	args := m.Called(ctx, tx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Participant), args.Error(1)
}

func (m *RespondentRepositoryMock) CountSiblings(ctx context.Context, tx *sqlx.Tx, participantID string) (int, int, error) {
	args := m.Called(ctx, tx, participantID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *RespondentRepositoryMock) MarkParticipantCompleted(ctx context.Context, tx *sqlx.Tx, participantID string) error {
	args := m.Called(ctx, tx, participantID)
	return args.Error(0)
}

func (m *RespondentRepositoryMock) GetCompletionNotice(ctx context.Context, participantID string) (*domain.CompletionNotice, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CompletionNotice), args.Error(1)
}

func (m *RespondentRepositoryMock) ListAssessments(ctx context.Context, userID string) ([]domain.Assessment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Assessment), args.Error(1)
}

type ResponseRepositoryMock struct {
	mock.Mock
}

var _ repository.ResponseRepository = (*ResponseRepositoryMock)(nil)

func (m *ResponseRepositoryMock) Upsert(ctx context.Context, ext sqlx.ExtContext, response *domain.Response) error {
	args := m.Called(ctx, ext, response)
	return args.Error(0)
}

type QuestionCatalogMock struct {
	mock.Mock
}

var _ repository.QuestionCatalog = (*QuestionCatalogMock)(nil)

func (m *QuestionCatalogMock) ActiveQuestions(ctx context.Context, categoryID string) ([]domain.Question, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *QuestionCatalogMock) ActiveQuestionsWithAnswers(ctx context.Context, respondentID string) ([]domain.QuestionWithAnswer, error) {
	args := m.Called(ctx, respondentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.QuestionWithAnswer), args.Error(1)
}

func (m *QuestionCatalogMock) GetActiveQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Question), args.Error(1)
}

type ProgressRepositoryMock struct {
	mock.Mock
}

var _ repository.ProgressRepository = (*ProgressRepositoryMock)(nil)

func (m *ProgressRepositoryMock) CountActiveQuestions(ctx context.Context, ext sqlx.ExtContext) (int, error) {
	args := m.Called(ctx, ext)
	return args.Int(0), args.Error(1)
}

func (m *ProgressRepositoryMock) CountAnswered(ctx context.Context, ext sqlx.ExtContext, respondentID string) (int, error) {
	args := m.Called(ctx, ext, respondentID)
	return args.Int(0), args.Error(1)
}

func (m *ProgressRepositoryMock) CategoryProgress(ctx context.Context, respondentID string) ([]domain.CategoryProgress, error) {
	args := m.Called(ctx, respondentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CategoryProgress), args.Error(1)
}

type ReportRepositoryMock struct {
	mock.Mock
}

var _ repository.ReportRepository = (*ReportRepositoryMock)(nil)

func (m *ReportRepositoryMock) ParticipantCounts(ctx context.Context, cycleID string) (int, int, error) {
	args := m.Called(ctx, cycleID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *ReportRepositoryMock) CategoryAverages(ctx context.Context, cycleID string) ([]domain.CategoryAverage, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CategoryAverage), args.Error(1)
}

func (m *ReportRepositoryMock) ScoreHistogram(ctx context.Context, cycleID string) ([]domain.ScoreBucket, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.ScoreBucket), args.Error(1)
}

func (m *ReportRepositoryMock) CompletedParticipants(ctx context.Context, cycleID string) ([]domain.CompletedParticipant, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CompletedParticipant), args.Error(1)
}

func (m *ReportRepositoryMock) ParticipantCategoryAverages(ctx context.Context, participantID string) ([]domain.CategoryAverage, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CategoryAverage), args.Error(1)
}

func (m *ReportRepositoryMock) Summary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Summary), args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

var _ Notifier = (*NotifierMock)(nil)

func (m *NotifierMock) CycleStarted(recipient, cycleTitle string) {
	m.Called(recipient, cycleTitle)
}

func (m *NotifierMock) AssessmentRequested(recipient, participantName, cycleTitle, respondentID string) {
	m.Called(recipient, participantName, cycleTitle, respondentID)
}

func (m *NotifierMock) ParticipantCompleted(recipient, cycleTitle string) {
	m.Called(recipient, cycleTitle)
}
