package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageState(t *testing.T) {
	stages := []string{"Qualifiers", "Semifinal", "Final"}

	tests := []struct {
		name    string
		current string
		want    StageState
		wantErr error
	}{
		{
			name:    "empty current stage defaults to first",
			current: "",
			want:    StageState{Name: "Qualifiers", Index: 0, IsFirst: true, Next: "Semifinal"},
		},
		{
			name:    "middle stage",
			current: "Semifinal",
			want:    StageState{Name: "Semifinal", Index: 1, Next: "Final"},
		},
		{
			name:    "final stage has no next",
			current: "Final",
			want:    StageState{Name: "Final", Index: 2, IsLast: true},
		},
		{
			name:    "stage missing from list",
			current: "Playoffs",
			wantErr: ErrStageNotInList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tournament := &Tournament{Stages: stages, CurrentStage: tt.current}
			state, err := tournament.StageState()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestStageStateEmptyStageList(t *testing.T) {
	tournament := &Tournament{}
	_, err := tournament.StageState()
	assert.ErrorIs(t, err, ErrStageNotInList)
}

func TestMatchTransitions(t *testing.T) {
	tests := []struct {
		from MatchStatus
		to   MatchStatus
		ok   bool
	}{
		{MatchStatusScheduled, MatchStatusLive, true},
		{MatchStatusLive, MatchStatusCompleted, true},
		{MatchStatusScheduled, MatchStatusCompleted, false},
		{MatchStatusLive, MatchStatusScheduled, false},
		{MatchStatusCompleted, MatchStatusLive, false},
		{MatchStatusCompleted, MatchStatusScheduled, false},
	}

	for _, tt := range tests {
		m := &Match{Status: tt.from}
		assert.Equalf(t, tt.ok, m.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
