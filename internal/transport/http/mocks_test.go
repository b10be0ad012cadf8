package http

import (
	"context"

	"github.com/review360/assessment-service/internal/domain"
	"github.com/review360/assessment-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type CycleServiceMock struct {
	mock.Mock
}

var _ service.CycleService = (*CycleServiceMock)(nil)

func (m *CycleServiceMock) CreateCycle(ctx context.Context, principal domain.Principal, in service.CreateCycleInput) (*domain.Cycle, error) {
	args := m.Called(ctx, principal, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *CycleServiceMock) UpdateCycle(ctx context.Context, principal domain.Principal, cycleID string, in service.UpdateCycleInput) (*domain.Cycle, error) {
	args := m.Called(ctx, principal, cycleID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *CycleServiceMock) AddParticipants(ctx context.Context, principal domain.Principal, cycleID string, userIDs []string) error {
	args := m.Called(ctx, principal, cycleID, userIDs)
	return args.Error(0)
}

func (m *CycleServiceMock) AddRespondents(ctx context.Context, principal domain.Principal, participantID string, userIDs []string) error {
	args := m.Called(ctx, principal, participantID, userIDs)
	return args.Error(0)
}

func (m *CycleServiceMock) StartCycle(ctx context.Context, principal domain.Principal, cycleID string) (*domain.Cycle, error) {
	args := m.Called(ctx, principal, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *CycleServiceMock) GetCycle(ctx context.Context, cycleID string) (*service.CycleDetail, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.CycleDetail), args.Error(1)
}

func (m *CycleServiceMock) ListCycles(ctx context.Context) ([]domain.CycleListItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CycleListItem), args.Error(1)
}

func (m *CycleServiceMock) RemoveParticipant(ctx context.Context, principal domain.Principal, cycleID, participantID string) error {
	args := m.Called(ctx, principal, cycleID, participantID)
	return args.Error(0)
}

type AssessmentServiceMock struct {
	mock.Mock
}

var _ service.AssessmentService = (*AssessmentServiceMock)(nil)

func (m *AssessmentServiceMock) ListAssessments(ctx context.Context, principal domain.Principal) ([]domain.Assessment, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Assessment), args.Error(1)
}

func (m *AssessmentServiceMock) ListQuestions(ctx context.Context, categoryID string) ([]domain.Question, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *AssessmentServiceMock) GetQuestions(ctx context.Context, principal domain.Principal, respondentID string) ([]domain.QuestionWithAnswer, error) {
	args := m.Called(ctx, principal, respondentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.QuestionWithAnswer), args.Error(1)
}

func (m *AssessmentServiceMock) BeginAssessment(ctx context.Context, principal domain.Principal, respondentID string) error {
	args := m.Called(ctx, principal, respondentID)
	return args.Error(0)
}

func (m *AssessmentServiceMock) SubmitResponse(ctx context.Context, principal domain.Principal, in service.SubmitResponseInput) error {
	args := m.Called(ctx, principal, in)
	return args.Error(0)
}

func (m *AssessmentServiceMock) CompleteAssessment(ctx context.Context, principal domain.Principal, respondentID string) error {
	args := m.Called(ctx, principal, respondentID)
	return args.Error(0)
}

func (m *AssessmentServiceMock) GetProgress(ctx context.Context, principal domain.Principal, respondentID string) (*domain.Progress, error) {
	args := m.Called(ctx, principal, respondentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Progress), args.Error(1)
}

type ReportServiceMock struct {
	mock.Mock
}

var _ service.ReportService = (*ReportServiceMock)(nil)

func (m *ReportServiceMock) CycleAnalytics(ctx context.Context, principal domain.Principal, cycleID string) (*domain.CycleAnalytics, error) {
	args := m.Called(ctx, principal, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CycleAnalytics), args.Error(1)
}

func (m *ReportServiceMock) CompareParticipants(ctx context.Context, principal domain.Principal, cycleID string) ([]domain.ParticipantScore, error) {
	args := m.Called(ctx, principal, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.ParticipantScore), args.Error(1)
}

func (m *ReportServiceMock) Summary(ctx context.Context, principal domain.Principal) (*domain.Summary, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Summary), args.Error(1)
}
