package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerpro/gamerpro/models"
)

type resultFixture struct {
	svc       ResultService
	matchRepo *fakeMatchRepo
	qualRepo  *fakeQualificationRepo
	resRepo   *fakeResultRepo
	matchID   int
}

func newResultFixture(t *testing.T, tournament *models.Tournament) *resultFixture {
	t.Helper()
	matchRepo := newFakeMatchRepo()
	groupRepo := newFakeGroupRepo()
	qualRepo := &fakeQualificationRepo{}
	resRepo := &fakeResultRepo{}

	state, err := tournament.StageState()
	require.NoError(t, err)

	group := &models.Group{TournamentID: tournament.ID, StageName: state.Name, Name: state.Name + " Group A"}
	require.NoError(t, groupRepo.Create(context.Background(), nil, group))

	match := &models.Match{
		GroupID:     group.ID,
		MatchNumber: 1,
		StartTime:   time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
		Status:      models.MatchStatusLive,
	}
	require.NoError(t, matchRepo.Create(context.Background(), nil, match))

	svc := NewResultService(
		&fakeTxRunner{},
		matchRepo,
		groupRepo,
		newFakeTournamentRepo(tournament),
		resRepo,
		qualRepo,
		nil,
	)
	return &resultFixture{svc: svc, matchRepo: matchRepo, qualRepo: qualRepo, resRepo: resRepo, matchID: match.ID}
}

func intPtr(v int) *int { return &v }

func TestSubmitResultsRecordsAndQualifies(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{
		ID:     1,
		Stages: []string{"Qualifiers", "Final"},
	})
	ctx := context.Background()

	saved, err := fx.svc.SubmitResults(ctx, fx.matchID, []ResultEntry{
		{TeamID: 1, Placement: intPtr(1), Kills: 9, Points: 20, Qualified: true},
		{TeamID: 2, Placement: intPtr(2), Kills: 4, Points: 12, Qualified: false},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	quals, err := fx.qualRepo.ListByTournament(ctx, 1)
	require.NoError(t, err)
	require.Len(t, quals, 1)
	assert.Equal(t, 1, quals[0].TeamID)
	assert.Equal(t, "Qualifiers", quals[0].FromStage)
	assert.Equal(t, "Final", quals[0].ToStage)
	assert.Equal(t, 1, quals[0].StageNumber)
}

func TestSubmitResultsOverwritesPreviousSubmission(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{
		ID:     1,
		Stages: []string{"Qualifiers", "Final"},
	})
	ctx := context.Background()

	_, err := fx.svc.SubmitResults(ctx, fx.matchID, []ResultEntry{
		{TeamID: 1, Placement: intPtr(3), Kills: 2, Points: 5},
	})
	require.NoError(t, err)

	_, err = fx.svc.SubmitResults(ctx, fx.matchID, []ResultEntry{
		{TeamID: 1, Placement: intPtr(1), Kills: 8, Points: 19},
	})
	require.NoError(t, err)

	results, err := fx.resRepo.ListByMatch(ctx, fx.matchID)
	require.NoError(t, err)
	require.Len(t, results, 1, "re-submission overwrites, never duplicates")
	assert.Equal(t, 19, results[0].Points)
	assert.Equal(t, 8, results[0].Kills)
	require.NotNil(t, results[0].Placement)
	assert.Equal(t, 1, *results[0].Placement)
}

func TestSubmitResultsRejectsQualificationOutOfFinalStage(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{
		ID:           1,
		Stages:       []string{"Qualifiers", "Final"},
		CurrentStage: "Final",
	})
	ctx := context.Background()

	_, err := fx.svc.SubmitResults(ctx, fx.matchID, []ResultEntry{
		{TeamID: 1, Points: 20, Qualified: true},
	})
	assert.ErrorIs(t, err, ErrFinalStage)

	// Nothing was written: the rejection happens before any row lands.
	results, listErr := fx.resRepo.ListByMatch(ctx, fx.matchID)
	require.NoError(t, listErr)
	assert.Empty(t, results)
}

func TestSubmitResultsFinalStageWithoutQualification(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{
		ID:           1,
		Stages:       []string{"Qualifiers", "Final"},
		CurrentStage: "Final",
	})
	ctx := context.Background()

	saved, err := fx.svc.SubmitResults(ctx, fx.matchID, []ResultEntry{
		{TeamID: 1, Placement: intPtr(1), Kills: 10, Points: 25},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestSubmitResultsEmptyEntries(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{ID: 1, Stages: []string{"Qualifiers"}})

	_, err := fx.svc.SubmitResults(context.Background(), fx.matchID, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSubmitResultsUnknownMatch(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{ID: 1, Stages: []string{"Qualifiers"}})

	_, err := fx.svc.SubmitResults(context.Background(), 404, []ResultEntry{{TeamID: 1}})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSubmitResultsQualificationUpsertIsIdempotent(t *testing.T) {
	fx := newResultFixture(t, &models.Tournament{
		ID:     1,
		Stages: []string{"Qualifiers", "Final"},
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := fx.svc.SubmitResults(ctx, fx.matchID, []ResultEntry{
			{TeamID: 1, Points: 10, Qualified: true},
		})
		require.NoError(t, err)
	}

	quals, err := fx.qualRepo.ListByTournament(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, quals, 1, "same (tournament, team, from_stage) triple collapses to one row")
}
