package http

import (
	"time"

	"github.com/review360/assessment-service/internal/domain"
	"github.com/review360/assessment-service/internal/service"
)

type cycleResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCycleResponse(c *domain.Cycle) cycleResponse {
	return cycleResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Status:      string(c.Status),
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

type cycleListItemResponse struct {
	cycleResponse
	ParticipantCount int `json:"participant_count"`
}

func toCycleListResponse(cycles []domain.CycleListItem) []cycleListItemResponse {
	out := make([]cycleListItemResponse, len(cycles))
	for i, c := range cycles {
		out[i] = cycleListItemResponse{
			cycleResponse:    toCycleResponse(&c.Cycle),
			ParticipantCount: c.ParticipantCount,
		}
	}

	return out
}

type respondentMemberResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type participantResponse struct {
	ID          string                     `json:"id"`
	UserID      string                     `json:"user_id"`
	Username    string                     `json:"username"`
	Status      string                     `json:"status"`
	Respondents []respondentMemberResponse `json:"respondents"`
}

type cycleDetailResponse struct {
	cycleResponse
	Participants []participantResponse `json:"participants"`
}

func toCycleDetailResponse(detail *service.CycleDetail) cycleDetailResponse {
	participants := make([]participantResponse, len(detail.Participants))

	for i, p := range detail.Participants {
		respondents := make([]respondentMemberResponse, len(p.Respondents))
		for j, r := range p.Respondents {
			respondents[j] = respondentMemberResponse{
				ID:       r.ID,
				UserID:   r.UserID,
				Username: r.Username,
				Status:   string(r.Status),
			}
		}

		participants[i] = participantResponse{
			ID:          p.ID,
			UserID:      p.UserID,
			Username:    p.Username,
			Status:      string(p.Status),
			Respondents: respondents,
		}
	}

	return cycleDetailResponse{
		cycleResponse: toCycleResponse(detail.Cycle),
		Participants:  participants,
	}
}

type assessmentResponse struct {
	RespondentID    string     `json:"respondent_id"`
	ParticipantID   string     `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	CycleTitle      string     `json:"cycle_title"`
	CycleEndDate    time.Time  `json:"cycle_end_date"`
	Status          string     `json:"status"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

func toAssessmentListResponse(assessments []domain.Assessment) []assessmentResponse {
	out := make([]assessmentResponse, len(assessments))
	for i, a := range assessments {
		out[i] = assessmentResponse{
			RespondentID:    a.RespondentID,
			ParticipantID:   a.ParticipantID,
			ParticipantName: a.ParticipantName,
			CycleTitle:      a.CycleTitle,
			CycleEndDate:    a.CycleEndDate,
			Status:          string(a.Status),
			StartedAt:       a.StartedAt,
			CompletedAt:     a.CompletedAt,
		}
	}

	return out
}

type questionResponse struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Category   string `json:"category"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index"`
}

func toQuestionListResponse(questions []domain.Question) []questionResponse {
	out := make([]questionResponse, len(questions))
	for i, q := range questions {
		out[i] = questionResponse{
			ID:         q.ID,
			CategoryID: q.CategoryID,
			Category:   q.Category,
			Text:       q.Text,
			OrderIndex: q.OrderIndex,
		}
	}

	return out
}

type questionWithAnswerResponse struct {
	questionResponse
	Score   *int    `json:"score"`
	Comment *string `json:"comment"`
}

func toQuestionWithAnswerListResponse(questions []domain.QuestionWithAnswer) []questionWithAnswerResponse {
	out := make([]questionWithAnswerResponse, len(questions))
	for i, q := range questions {
		out[i] = questionWithAnswerResponse{
			questionResponse: questionResponse{
				ID:         q.ID,
				CategoryID: q.CategoryID,
				Category:   q.Category,
				Text:       q.Text,
				OrderIndex: q.OrderIndex,
			},
			Score:   q.Score,
			Comment: q.Comment,
		}
	}

	return out
}

type categoryProgressResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int    `json:"total"`
	Answered     int    `json:"answered"`
}

type progressResponse struct {
	TotalQuestions    int                        `json:"total_questions"`
	AnsweredQuestions int                        `json:"answered_questions"`
	Percentage        int                        `json:"percentage"`
	PerCategory       []categoryProgressResponse `json:"per_category"`
}

func toProgressResponse(p *domain.Progress) progressResponse {
	perCategory := make([]categoryProgressResponse, len(p.PerCategory))
	for i, c := range p.PerCategory {
		perCategory[i] = categoryProgressResponse{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Total:        c.Total,
			Answered:     c.Answered,
		}
	}

	return progressResponse{
		TotalQuestions:    p.TotalQuestions,
		AnsweredQuestions: p.AnsweredQuestions,
		Percentage:        p.Percentage,
		PerCategory:       perCategory,
	}
}

type categoryAverageResponse struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	AverageScore float64 `json:"average_score"`
}

func toCategoryAverageListResponse(averages []domain.CategoryAverage) []categoryAverageResponse {
	out := make([]categoryAverageResponse, len(averages))
	for i, a := range averages {
		out[i] = categoryAverageResponse{
			CategoryID:   a.CategoryID,
			CategoryName: a.CategoryName,
			AverageScore: a.AverageScore,
		}
	}

	return out
}

type scoreBucketResponse struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type cycleAnalyticsResponse struct {
	CycleID          string                    `json:"cycle_id"`
	ParticipantCount int                       `json:"participant_count"`
	CompletedCount   int                       `json:"completed_count"`
	CompletionRate   int                       `json:"completion_rate"`
	PerCategory      []categoryAverageResponse `json:"per_category"`
	ScoreHistogram   []scoreBucketResponse     `json:"score_histogram"`
	OverallAverage   float64                   `json:"overall_average"`
}

func toCycleAnalyticsResponse(a *domain.CycleAnalytics) cycleAnalyticsResponse {
	histogram := make([]scoreBucketResponse, len(a.ScoreHistogram))
	for i, b := range a.ScoreHistogram {
		histogram[i] = scoreBucketResponse{Score: b.Score, Count: b.Count}
	}

	return cycleAnalyticsResponse{
		CycleID:          a.CycleID,
		ParticipantCount: a.ParticipantCount,
		CompletedCount:   a.CompletedCount,
		CompletionRate:   a.CompletionRate,
		PerCategory:      toCategoryAverageListResponse(a.PerCategory),
		ScoreHistogram:   histogram,
		OverallAverage:   a.OverallAverage,
	}
}

type participantScoreResponse struct {
	ParticipantID string                    `json:"participant_id"`
	UserID        string                    `json:"user_id"`
	Username      string                    `json:"username"`
	OverallScore  float64                   `json:"overall_score"`
	PerCategory   []categoryAverageResponse `json:"per_category"`
}

func toParticipantScoreListResponse(scores []domain.ParticipantScore) []participantScoreResponse {
	out := make([]participantScoreResponse, len(scores))
	for i, s := range scores {
		out[i] = participantScoreResponse{
			ParticipantID: s.ParticipantID,
			UserID:        s.UserID,
			Username:      s.Username,
			OverallScore:  s.OverallScore,
			PerCategory:   toCategoryAverageListResponse(s.PerCategory),
		}
	}

	return out
}

type summaryResponse struct {
	CyclesTotal       int     `json:"cycles_total"`
	CyclesActive      int     `json:"cycles_active"`
	ParticipantsTotal int     `json:"participants_total"`
	ResponsesTotal    int     `json:"responses_total"`
	OverallAverage    float64 `json:"overall_average"`
}

func toSummaryResponse(s *domain.Summary) summaryResponse {
	return summaryResponse{
		CyclesTotal:       s.CyclesTotal,
		CyclesActive:      s.CyclesActive,
		ParticipantsTotal: s.ParticipantsTotal,
		ResponsesTotal:    s.ResponsesTotal,
		OverallAverage:    s.OverallAverage,
	}
}
