package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/staging"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newStagingFixture(t *testing.T, tournament *models.Tournament) (StagingService, *fakeRegistrationRepo, *fakeQualificationRepo, *fakeGroupRepo, *fakeTournamentRepo) {
	t.Helper()
	regRepo := &fakeRegistrationRepo{teamIDs: make(map[int][]int)}
	qualRepo := &fakeQualificationRepo{}
	groupRepo := newFakeGroupRepo()
	tournamentRepo := newFakeTournamentRepo(tournament)

	svc := NewStagingService(
		&fakeTxRunner{},
		tournamentRepo,
		regRepo,
		qualRepo,
		groupRepo,
		staging.NewGenerator(staging.DefaultGroupCapacity, rand.NewSource(7)),
		nil,
		nil,
		discardLogger(),
	)
	return svc, regRepo, qualRepo, groupRepo, tournamentRepo
}

func teamIDsOf(groups []models.Group) []int {
	ids := make([]int, 0)
	for _, g := range groups {
		for _, gt := range g.Teams {
			ids = append(ids, gt.TeamID)
		}
	}
	return ids
}

func TestGenerateGroupsFirstStageUsesRegistrations(t *testing.T) {
	tournament := &models.Tournament{
		ID:     1,
		Name:   "Summer Cup",
		Stages: []string{"Qualifiers", "Final"},
	}
	svc, regRepo, _, _, _ := newStagingFixture(t, tournament)

	pool := make([]int, 0, 13)
	for id := 1; id <= 13; id++ {
		pool = append(pool, id)
	}
	regRepo.teamIDs[1] = pool

	groups, err := svc.GenerateGroups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Qualifiers Group A", groups[0].Name)
	assert.Equal(t, "Wildcard", groups[1].Name)
	assert.Len(t, groups[0].Teams, 12)
	assert.Len(t, groups[1].Teams, 1)

	assert.ElementsMatch(t, pool, teamIDsOf(groups), "every registered team appears exactly once")
	for _, g := range groups {
		assert.Equal(t, "Qualifiers", g.StageName)
	}
}

func TestGenerateGroupsLaterStageUsesQualifications(t *testing.T) {
	tournament := &models.Tournament{
		ID:           1,
		Name:         "Summer Cup",
		Stages:       []string{"Qualifiers", "Final"},
		CurrentStage: "Final",
	}
	svc, regRepo, qualRepo, _, _ := newStagingFixture(t, tournament)

	// Registrations must be ignored once the tournament left its first stage.
	regRepo.teamIDs[1] = []int{1, 2, 3, 4, 5}
	for _, teamID := range []int{2, 4} {
		require.NoError(t, qualRepo.Upsert(context.Background(), nil, &models.Qualification{
			TournamentID: 1, TeamID: teamID, FromStage: "Qualifiers", ToStage: "Final", StageNumber: 1,
		}))
	}

	groups, err := svc.GenerateGroups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, "Wildcard", groups[0].Name)
	assert.ElementsMatch(t, []int{2, 4}, teamIDsOf(groups))
}

func TestGenerateGroupsNoEligibleTeams(t *testing.T) {
	tournament := &models.Tournament{
		ID:           1,
		Stages:       []string{"Qualifiers", "Final"},
		CurrentStage: "Final",
	}
	svc, _, _, groupRepo, _ := newStagingFixture(t, tournament)

	// A leftover group from the current stage must survive a failed run.
	existing := &models.Group{TournamentID: 1, StageName: "Final", Name: "Final Group A"}
	require.NoError(t, groupRepo.Create(context.Background(), nil, existing))

	_, err := svc.GenerateGroups(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoEligibleTeams)

	survived, getErr := groupRepo.GetByID(context.Background(), existing.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "Final Group A", survived.Name)
}

func TestGenerateGroupsReplacesOnlyCurrentStage(t *testing.T) {
	tournament := &models.Tournament{
		ID:           1,
		Stages:       []string{"Qualifiers", "Final"},
		CurrentStage: "Final",
	}
	svc, _, qualRepo, groupRepo, _ := newStagingFixture(t, tournament)

	qualifierGroup := &models.Group{TournamentID: 1, StageName: "Qualifiers", Name: "Qualifiers Group A"}
	require.NoError(t, groupRepo.Create(context.Background(), nil, qualifierGroup))
	staleFinal := &models.Group{TournamentID: 1, StageName: "Final", Name: "Wildcard"}
	require.NoError(t, groupRepo.Create(context.Background(), nil, staleFinal))

	require.NoError(t, qualRepo.Upsert(context.Background(), nil, &models.Qualification{
		TournamentID: 1, TeamID: 9, FromStage: "Qualifiers", ToStage: "Final", StageNumber: 1,
	}))

	groups, err := svc.GenerateGroups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	// The previous stage's group is intact, the stale current-stage group is gone.
	_, err = groupRepo.GetByID(context.Background(), qualifierGroup.ID)
	assert.NoError(t, err)
	_, err = groupRepo.GetByID(context.Background(), staleFinal.ID)
	assert.Error(t, err)
}

func TestGenerateGroupsRunsInsideTransactionWithLock(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Stages: []string{"Qualifiers"}}
	txRunner := &fakeTxRunner{}
	regRepo := &fakeRegistrationRepo{teamIDs: map[int][]int{1: {1, 2, 3}}}
	groupRepo := newFakeGroupRepo()

	svc := NewStagingService(
		txRunner,
		newFakeTournamentRepo(tournament),
		regRepo,
		&fakeQualificationRepo{},
		groupRepo,
		staging.NewGenerator(staging.DefaultGroupCapacity, rand.NewSource(1)),
		nil,
		nil,
		discardLogger(),
	)

	_, err := svc.GenerateGroups(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, txRunner.calls)
	assert.Equal(t, 1, groupRepo.lockCalls)
}

func TestAdvanceStage(t *testing.T) {
	tournament := &models.Tournament{
		ID:     1,
		Name:   "Summer Cup",
		Stages: []string{"Qualifiers", "Semifinal", "Final"},
	}
	svc, _, _, _, tournamentRepo := newStagingFixture(t, tournament)

	advanced, err := svc.AdvanceStage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Semifinal", advanced.CurrentStage)

	stored, err := tournamentRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Semifinal", stored.CurrentStage)
}

func TestAdvanceStageAtFinalStage(t *testing.T) {
	tournament := &models.Tournament{
		ID:           1,
		Stages:       []string{"Qualifiers", "Final"},
		CurrentStage: "Final",
	}
	svc, _, _, _, _ := newStagingFixture(t, tournament)

	_, err := svc.AdvanceStage(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyFinalStage)
}

func TestStageProgressionEndToEnd(t *testing.T) {
	tournament := &models.Tournament{
		ID:     1,
		Name:   "Summer Cup",
		Stages: []string{"Qualifiers", "Final"},
	}
	svc, regRepo, qualRepo, _, _ := newStagingFixture(t, tournament)

	pool := make([]int, 0, 13)
	for id := 1; id <= 13; id++ {
		pool = append(pool, id)
	}
	regRepo.teamIDs[1] = pool

	groups, err := svc.GenerateGroups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// The result recorder would write these; here the pool matters, not the scores.
	ctx := context.Background()
	for _, teamID := range []int{3, 7, 11} {
		require.NoError(t, qualRepo.Upsert(ctx, nil, &models.Qualification{
			TournamentID: 1, TeamID: teamID, FromStage: "Qualifiers", ToStage: "Final", StageNumber: 1,
		}))
	}

	advanced, err := svc.AdvanceStage(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Final", advanced.CurrentStage)

	finalGroups, err := svc.GenerateGroups(ctx, 1)
	require.NoError(t, err)
	require.Len(t, finalGroups, 1)
	assert.ElementsMatch(t, []int{3, 7, 11}, teamIDsOf(finalGroups))
	assert.Equal(t, "Final", finalGroups[0].StageName)
}

func TestGenerateGroupsTournamentNotFound(t *testing.T) {
	svc, _, _, _, _ := newStagingFixture(t, &models.Tournament{ID: 1, Stages: []string{"Qualifiers"}})

	_, err := svc.GenerateGroups(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
