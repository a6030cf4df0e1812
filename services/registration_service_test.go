package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisqualifyRemovesRegistration(t *testing.T) {
	regRepo := &fakeRegistrationRepo{teamIDs: map[int][]int{1: {5, 9}}}
	svc := NewRegistrationService(regRepo, newFakeTournamentRepo(), nil)
	ctx := context.Background()

	require.NoError(t, svc.Disqualify(ctx, 1, 5))

	regs, err := svc.ListByTournament(ctx, 1)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, 9, regs[0].TeamID)

	// The team is gone, so a repeat disqualification has nothing to delete.
	assert.ErrorIs(t, svc.Disqualify(ctx, 1, 5), ErrRegistrationNotFound)
}

func TestDisqualifyUnregisteredTeam(t *testing.T) {
	regRepo := &fakeRegistrationRepo{teamIDs: map[int][]int{1: {5}}}
	svc := NewRegistrationService(regRepo, newFakeTournamentRepo(), nil)

	assert.ErrorIs(t, svc.Disqualify(context.Background(), 1, 42), ErrRegistrationNotFound)
	assert.ErrorIs(t, svc.Disqualify(context.Background(), 2, 5), ErrRegistrationNotFound)
}

func TestDisqualifyLeavesOtherTournamentsAlone(t *testing.T) {
	regRepo := &fakeRegistrationRepo{teamIDs: map[int][]int{1: {5}, 2: {5}}}
	svc := NewRegistrationService(regRepo, newFakeTournamentRepo(), nil)
	ctx := context.Background()

	require.NoError(t, svc.Disqualify(ctx, 1, 5))

	regs, err := svc.ListByTournament(ctx, 2)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, 5, regs[0].TeamID)
}
