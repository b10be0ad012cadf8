//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupReportFixture runs a full cycle: bob and carol review alice, both
// submit every active question and complete, so alice's participant rolls up
// to completed. Scores per question: bob 4,4,5 and carol 2,4,3.
func setupReportFixture(t *testing.T) string {
	t.Helper()

	alicePart, bobResp, carolResp := setupAssessmentFixture(t)
	respondents := NewRespondentRepository(testDB, logger)
	responses := NewResponseRepository(testDB, logger)
	ctx := context.Background()

	scores := map[string]map[string]int{
		bobResp:   {"q-1": 4, "q-2": 4, "q-3": 5},
		carolResp: {"q-1": 2, "q-2": 4, "q-3": 3},
	}
	for respID, byQuestion := range scores {
		for questionID, score := range byQuestion {
			require.NoError(t, responses.Upsert(ctx, testDB, &domain.Response{
				RespondentID: respID,
				QuestionID:   questionID,
				Score:        score,
				UpdatedAt:    time.Now(),
			}))
		}
	}

	completedAt := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	inTx(t, testDB, func(tx *sqlx.Tx) error {
		require.NoError(t, respondents.MarkCompleted(ctx, tx, bobResp, completedAt))
		require.NoError(t, respondents.MarkCompleted(ctx, tx, carolResp, completedAt))
		return respondents.MarkParticipantCompleted(ctx, tx, alicePart)
	})

	return alicePart
}

func TestReportRepository_CycleQueries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	alicePart := setupReportFixture(t)
	repo := NewReportRepository(testDB, logger)
	ctx := context.Background()

	total, completed, err := repo.ParticipantCounts(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, completed)

	averages, err := repo.CategoryAverages(ctx, "cycle-1")
	require.NoError(t, err)
	require.Len(t, averages, 2)
	// Communication: (4+4+2+4)/4 = 3.5, Leadership: (5+3)/2 = 4.
	assert.Equal(t, "Communication", averages[0].CategoryName)
	assert.InDelta(t, 3.5, averages[0].AverageScore, 0.001)
	assert.Equal(t, "Leadership", averages[1].CategoryName)
	assert.InDelta(t, 4.0, averages[1].AverageScore, 0.001)

	histogram, err := repo.ScoreHistogram(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ScoreBucket{
		{Score: 2, Count: 1},
		{Score: 3, Count: 1},
		{Score: 4, Count: 3},
		{Score: 5, Count: 1},
	}, histogram)

	participants, err := repo.CompletedParticipants(ctx, "cycle-1")
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, alicePart, participants[0].ParticipantID)
	assert.Equal(t, "alice", participants[0].Username)

	perParticipant, err := repo.ParticipantCategoryAverages(ctx, alicePart)
	require.NoError(t, err)
	require.Len(t, perParticipant, 2)
	assert.InDelta(t, 3.5, perParticipant[0].AverageScore, 0.001)
	assert.InDelta(t, 4.0, perParticipant[1].AverageScore, 0.001)
}

func TestReportRepository_Summary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	setupReportFixture(t)
	repo := NewReportRepository(testDB, logger)

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CyclesTotal)
	assert.Equal(t, 1, summary.CyclesActive)
	assert.Equal(t, 1, summary.ParticipantsTotal)
	assert.Equal(t, 6, summary.ResponsesTotal)
	// Mean of category means: (3.5 + 4.0) / 2 = 3.75.
	assert.InDelta(t, 3.75, summary.OverallAverage, 0.001)
}

func TestReportRepository_EmptyCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	seedUsers(t, testDB)
	cycleRepo := NewCycleRepository(testDB, logger)
	repo := NewReportRepository(testDB, logger)
	ctx := context.Background()

	require.NoError(t, cycleRepo.CreateCycle(ctx, newDraftCycle("cycle-1")))

	total, completed, err := repo.ParticipantCounts(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, completed)

	averages, err := repo.CategoryAverages(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Empty(t, averages)

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.OverallAverage)
}
