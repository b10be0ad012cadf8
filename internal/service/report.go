package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/review360/assessment-service/internal/domain"
	"github.com/review360/assessment-service/internal/repository"
)

type ReportService interface {
	CycleAnalytics(ctx context.Context, principal domain.Principal, cycleID string) (*domain.CycleAnalytics, error)
	CompareParticipants(ctx context.Context, principal domain.Principal, cycleID string) ([]domain.ParticipantScore, error)
	Summary(ctx context.Context, principal domain.Principal) (*domain.Summary, error)
}

type ReportServiceImpl struct {
	log     *slog.Logger
	cycles  repository.CycleRepository
	reports repository.ReportRepository
}

func NewReportService(
	log *slog.Logger,
	cycles repository.CycleRepository,
	reports repository.ReportRepository,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		log:     log,
		cycles:  cycles,
		reports: reports,
	}
}

func (s *ReportServiceImpl) CycleAnalytics(ctx context.Context, principal domain.Principal, cycleID string) (*domain.CycleAnalytics, error) {
	const op = "internal.service.report.CycleAnalytics"

	if _, err := s.cycles.GetCycleByID(ctx, cycleID); err != nil {
		return nil, fmt.Errorf("%s: failed to get cycle: %w", op, err)
	}

	total, completed, err := s.reports.ParticipantCounts(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count participants: %w", op, err)
	}

	averages, err := s.reports.CategoryAverages(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get category averages: %w", op, err)
	}

	histogram, err := s.reports.ScoreHistogram(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get score histogram: %w", op, err)
	}

	return &domain.CycleAnalytics{
		CycleID:          cycleID,
		ParticipantCount: total,
		CompletedCount:   completed,
		CompletionRate:   roundPercentage(completed, total),
		PerCategory:      averages,
		ScoreHistogram:   histogram,
		OverallAverage:   overallAverage(averages),
	}, nil
}

func (s *ReportServiceImpl) CompareParticipants(ctx context.Context, principal domain.Principal, cycleID string) ([]domain.ParticipantScore, error) {
	const op = "internal.service.report.CompareParticipants"

	if _, err := s.cycles.GetCycleByID(ctx, cycleID); err != nil {
		return nil, fmt.Errorf("%s: failed to get cycle: %w", op, err)
	}

	participants, err := s.reports.CompletedParticipants(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get completed participants: %w", op, err)
	}

	scores := make([]domain.ParticipantScore, 0, len(participants))

	for _, participant := range participants {
		averages, err := s.reports.ParticipantCategoryAverages(ctx, participant.ParticipantID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get participant averages: %w", op, err)
		}

		scores = append(scores, domain.ParticipantScore{
			ParticipantID: participant.ParticipantID,
			UserID:        participant.UserID,
			Username:      participant.Username,
			OverallScore:  overallAverage(averages),
			PerCategory:   averages,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].OverallScore > scores[j].OverallScore
	})

	return scores, nil
}

func (s *ReportServiceImpl) Summary(ctx context.Context, principal domain.Principal) (*domain.Summary, error) {
	const op = "internal.service.report.Summary"

	summary, err := s.reports.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get summary: %w", op, err)
	}

	return summary, nil
}

// overallAverage is the mean of per-category averages, not of raw scores, so
// a category with many questions does not dominate the overall figure.
func overallAverage(averages []domain.CategoryAverage) float64 {
	if len(averages) == 0 {
		return 0
	}

	var sum float64
	for _, avg := range averages {
		sum += avg.AverageScore
	}

	return math.Round(sum/float64(len(averages))*100) / 100
}
