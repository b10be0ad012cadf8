//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftCycle(id string) *domain.Cycle {
	return &domain.Cycle{
		ID:          id,
		Title:       "Q1 Review",
		Description: "Quarterly 360 review",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:      domain.CycleDraft,
		CreatedBy:   "hr-1",
	}
}

func participantID(t *testing.T, db *sqlx.DB, cycleID, userID string) string {
	t.Helper()

	var id string
	err := db.Get(&id, "SELECT id FROM participants WHERE cycle_id = $1 AND user_id = $2", cycleID, userID)
	require.NoError(t, err)

	return id
}

func respondentID(t *testing.T, db *sqlx.DB, participantID, userID string) string {
	t.Helper()

	var id string
	err := db.Get(&id, "SELECT id FROM respondents WHERE participant_id = $1 AND respondent_user_id = $2", participantID, userID)
	require.NoError(t, err)

	return id
}

func inTx(t *testing.T, db *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func TestCycleRepository_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	seedUsers(t, testDB)
	repo := NewCycleRepository(testDB, logger)
	ctx := context.Background()

	cycle := newDraftCycle("cycle-1")
	require.NoError(t, repo.CreateCycle(ctx, cycle))
	assert.False(t, cycle.CreatedAt.IsZero(), "insert should fill created_at")

	got, err := repo.GetCycleByID(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CycleDraft, got.Status)
	assert.Equal(t, "Q1 Review", got.Title)

	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.AddParticipants(ctx, tx, "cycle-1", []string{"alice-id", "bob-id"})
	})

	// Re-adding an existing member must be a silent no-op.
	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.AddParticipants(ctx, tx, "cycle-1", []string{"alice-id"})
	})

	inTx(t, testDB, func(tx *sqlx.Tx) error {
		count, err := repo.CountParticipants(ctx, tx, "cycle-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		return nil
	})

	alicePart := participantID(t, testDB, "cycle-1", "alice-id")

	participant, err := repo.GetParticipant(ctx, alicePart)
	require.NoError(t, err)
	assert.Equal(t, "cycle-1", participant.CycleID)
	assert.Equal(t, domain.ParticipantPending, participant.Status)

	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.AddRespondents(ctx, tx, alicePart, []string{"bob-id", "carol-id"})
	})

	participants, err := repo.GetCycleParticipants(ctx, "cycle-1")
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "alice", participants[0].Username, "participants should be ordered by username")
	assert.Len(t, participants[0].Respondents, 2)
	assert.Equal(t, "bob", participants[0].Respondents[0].Username)
	assert.Empty(t, participants[1].Respondents)

	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.ActivateCycle(ctx, tx, "cycle-1")
	})

	got, err = repo.GetCycleByID(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CycleActive, got.Status)

	var respondentStatuses []string
	err = testDB.Select(&respondentStatuses, "SELECT status FROM respondents WHERE participant_id = $1", alicePart)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"active", "active"}, respondentStatuses, "cascade should activate respondents")

	recipients, err := repo.ListParticipantRecipients(ctx, "cycle-1")
	require.NoError(t, err)
	usernames := make([]string, len(recipients))
	for i, r := range recipients {
		usernames[i] = r.Username
	}
	assert.ElementsMatch(t, []string{"alice.chat", "bob.chat"}, usernames)

	respondentRecipients, err := repo.ListRespondentRecipients(ctx, "cycle-1")
	require.NoError(t, err)
	require.Len(t, respondentRecipients, 1, "carol has no chat account and must be skipped")
	assert.Equal(t, "bob.chat", respondentRecipients[0].Username)
	assert.Equal(t, "alice", respondentRecipients[0].ParticipantName)
	assert.NotEmpty(t, respondentRecipients[0].RespondentID)
}

func TestCycleRepository_CreateCycle_UnknownCreator(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	seedUsers(t, testDB)
	repo := NewCycleRepository(testDB, logger)

	cycle := newDraftCycle("cycle-1")
	cycle.CreatedBy = "ghost"

	err := repo.CreateCycle(context.Background(), cycle)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCycleRepository_UpdateCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	seedUsers(t, testDB)
	repo := NewCycleRepository(testDB, logger)
	ctx := context.Background()

	cycle := newDraftCycle("cycle-1")
	require.NoError(t, repo.CreateCycle(ctx, cycle))

	cycle.Title = "Q1 Review (extended)"
	cycle.EndDate = cycle.EndDate.AddDate(0, 0, 7)
	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.UpdateCycle(ctx, tx, cycle)
	})

	got, err := repo.GetCycleByID(ctx, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, "Q1 Review (extended)", got.Title)

	tx, err := testDB.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	ghost := newDraftCycle("ghost")
	err = repo.UpdateCycle(ctx, tx, ghost)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCycleRepository_RemoveParticipant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	seedUsers(t, testDB)
	repo := NewCycleRepository(testDB, logger)
	ctx := context.Background()

	cycle := newDraftCycle("cycle-1")
	require.NoError(t, repo.CreateCycle(ctx, cycle))
	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.AddParticipants(ctx, tx, "cycle-1", []string{"alice-id"})
	})

	alicePart := participantID(t, testDB, "cycle-1", "alice-id")
	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.AddRespondents(ctx, tx, alicePart, []string{"bob-id"})
	})

	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.RemoveParticipant(ctx, tx, "cycle-1", alicePart)
	})

	var count int
	require.NoError(t, testDB.Get(&count, "SELECT COUNT(*) FROM respondents WHERE participant_id = $1", alicePart))
	assert.Zero(t, count, "respondents should be removed with their participant")

	tx, err := testDB.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.RemoveParticipant(ctx, tx, "cycle-1", alicePart)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCycleRepository_ListCycles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	truncateTables(t, testDB)
	seedUsers(t, testDB)
	repo := NewCycleRepository(testDB, logger)
	ctx := context.Background()

	first := newDraftCycle("cycle-1")
	require.NoError(t, repo.CreateCycle(ctx, first))
	inTx(t, testDB, func(tx *sqlx.Tx) error {
		return repo.AddParticipants(ctx, tx, "cycle-1", []string{"alice-id", "bob-id"})
	})

	second := newDraftCycle("cycle-2")
	second.Title = "Q2 Review"
	require.NoError(t, repo.CreateCycle(ctx, second))

	cycles, err := repo.ListCycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 2)

	byID := make(map[string]domain.CycleListItem, len(cycles))
	for _, c := range cycles {
		byID[c.ID] = c
	}
	assert.Equal(t, 2, byID["cycle-1"].ParticipantCount)
	assert.Zero(t, byID["cycle-2"].ParticipantCount)
}
