package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/domain"
)

type ReportRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewReportRepository(db *sqlx.DB, log *slog.Logger) *ReportRepository {
	return &ReportRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ReportRepository) ParticipantCounts(ctx context.Context, cycleID string) (int, int, error) {
	const op = "internal.repository.postgres.ParticipantCounts"

	query, args, err := r.sq.Select(
		"COUNT(*) as total",
		fmt.Sprintf("COUNT(*) FILTER (WHERE status = '%s') as completed", domain.ParticipantCompleted),
	).
		From("participants").
		Where(sq.Eq{"cycle_id": cycleID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var counts struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return 0, 0, fmt.Errorf("%s: failed to count participants: %w", op, err)
	}

	return counts.Total, counts.Completed, nil
}

func (r *ReportRepository) CategoryAverages(ctx context.Context, cycleID string) ([]domain.CategoryAverage, error) {
	const op = "internal.repository.postgres.CategoryAverages"

	query, args, err := r.sq.Select(
		"c.id as category_id",
		"c.name as category_name",
		"ROUND(AVG(res.score)::numeric, 2) as avg_score",
	).
		From("responses res").
		Join("questions q ON q.id = res.question_id").
		Join("categories c ON c.id = q.category_id").
		Join("respondents r ON r.id = res.respondent_id").
		Join("participants p ON p.id = r.participant_id").
		Where(sq.Eq{"p.cycle_id": cycleID}).
		GroupBy("c.id", "c.name").
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var averages []domain.CategoryAverage
	if err := r.db.SelectContext(ctx, &averages, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select category averages: %w", op, err)
	}

	return averages, nil
}

func (r *ReportRepository) ScoreHistogram(ctx context.Context, cycleID string) ([]domain.ScoreBucket, error) {
	const op = "internal.repository.postgres.ScoreHistogram"

	query, args, err := r.sq.Select(
		"res.score",
		"COUNT(*) as count",
	).
		From("responses res").
		Join("respondents r ON r.id = res.respondent_id").
		Join("participants p ON p.id = r.participant_id").
		Where(sq.Eq{"p.cycle_id": cycleID}).
		GroupBy("res.score").
		OrderBy("res.score").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var histogram []domain.ScoreBucket
	if err := r.db.SelectContext(ctx, &histogram, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select histogram: %w", op, err)
	}

	return histogram, nil
}

func (r *ReportRepository) CompletedParticipants(ctx context.Context, cycleID string) ([]domain.CompletedParticipant, error) {
	const op = "internal.repository.postgres.CompletedParticipants"

	query, args, err := r.sq.Select(
		"p.id as participant_id",
		"p.user_id",
		"u.username",
	).
		From("participants p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.cycle_id": cycleID, "p.status": domain.ParticipantCompleted}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var participants []domain.CompletedParticipant
	if err := r.db.SelectContext(ctx, &participants, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select completed participants: %w", op, err)
	}

	return participants, nil
}

func (r *ReportRepository) ParticipantCategoryAverages(ctx context.Context, participantID string) ([]domain.CategoryAverage, error) {
	const op = "internal.repository.postgres.ParticipantCategoryAverages"

	query, args, err := r.sq.Select(
		"c.id as category_id",
		"c.name as category_name",
		"ROUND(AVG(res.score)::numeric, 2) as avg_score",
	).
		From("responses res").
		Join("questions q ON q.id = res.question_id").
		Join("categories c ON c.id = q.category_id").
		Join("respondents r ON r.id = res.respondent_id").
		Where(sq.Eq{"r.participant_id": participantID}).
		GroupBy("c.id", "c.name").
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var averages []domain.CategoryAverage
	if err := r.db.SelectContext(ctx, &averages, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select participant averages: %w", op, err)
	}

	return averages, nil
}

func (r *ReportRepository) Summary(ctx context.Context) (*domain.Summary, error) {
	const op = "internal.repository.postgres.Summary"

	query := fmt.Sprintf(`SELECT
		(SELECT COUNT(*) FROM cycles) as cycles_total,
		(SELECT COUNT(*) FROM cycles WHERE status = '%s') as cycles_active,
		(SELECT COUNT(*) FROM participants) as participants_total,
		(SELECT COUNT(*) FROM responses) as responses_total,
		(SELECT COALESCE(ROUND(AVG(cat_avg)::numeric, 2), 0) FROM (
			SELECT AVG(res.score) as cat_avg
			FROM responses res
			JOIN questions q ON q.id = res.question_id
			GROUP BY q.category_id
		) per_category) as overall_average`,
		domain.CycleActive,
	)

	var row struct {
		CyclesTotal       int     `db:"cycles_total"`
		CyclesActive      int     `db:"cycles_active"`
		ParticipantsTotal int     `db:"participants_total"`
		ResponsesTotal    int     `db:"responses_total"`
		OverallAverage    float64 `db:"overall_average"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("%s: failed to get summary: %w", op, err)
	}

	return &domain.Summary{
		CyclesTotal:       row.CyclesTotal,
		CyclesActive:      row.CyclesActive,
		ParticipantsTotal: row.ParticipantsTotal,
		ResponsesTotal:    row.ResponsesTotal,
		OverallAverage:    row.OverallAverage,
	}, nil
}
