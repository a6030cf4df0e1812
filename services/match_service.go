package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
	"github.com/gamerpro/gamerpro/staging"
)

type ScheduleMatchInput struct {
	GroupID      int       `json:"group_id"`
	StartTime    time.Time `json:"start_time"`
	RoomID       string    `json:"room_id"`
	RoomPassword string    `json:"room_password"`
}

// CredentialView is what the reveal endpoint returns. Before the gate opens
// the room fields are omitted and OpensAt tells the viewer when to come back.
type CredentialView struct {
	MatchID      int       `json:"match_id"`
	Visible      bool      `json:"visible"`
	OpensAt      time.Time `json:"opens_at"`
	RoomID       string    `json:"room_id,omitempty"`
	RoomPassword string    `json:"room_password,omitempty"`
}

type MatchService interface {
	Schedule(ctx context.Context, input ScheduleMatchInput) (*models.Match, error)
	Start(ctx context.Context, matchID int) (*models.Match, error)
	Complete(ctx context.Context, matchID int) (*models.Match, error)
	ListByGroup(ctx context.Context, groupID int) ([]models.Match, error)
	// RevealCredentials evaluates the time gate fresh against now; nothing is
	// cached or stored when the gate opens.
	RevealCredentials(ctx context.Context, matchID int, now time.Time) (*CredentialView, error)
}

type matchService struct {
	txRunner  repositories.TxRunner
	matchRepo repositories.MatchRepository
	credRepo  repositories.MatchCredentialsRepository
	groupRepo repositories.GroupRepository
	hub       *staging.Hub
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	credRepo repositories.MatchCredentialsRepository,
	groupRepo repositories.GroupRepository,
	hub *staging.Hub,
) MatchService {
	return &matchService{
		txRunner:  txRunner,
		matchRepo: matchRepo,
		credRepo:  credRepo,
		groupRepo: groupRepo,
		hub:       hub,
	}
}

// Schedule creates one match for a group along with its denormalized
// credentials row. The match number is the count of matches already in the
// group plus one; existing matches are never renumbered.
func (s *matchService) Schedule(ctx context.Context, input ScheduleMatchInput) (*models.Match, error) {
	if input.GroupID == 0 {
		return nil, ErrGroupNotFound
	}
	if input.StartTime.IsZero() || input.RoomID == "" || input.RoomPassword == "" {
		return nil, ErrMatchFieldsRequired
	}

	group, err := s.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	match := &models.Match{
		GroupID:      group.ID,
		StartTime:    input.StartTime,
		RoomID:       input.RoomID,
		RoomPassword: input.RoomPassword,
		Status:       models.MatchStatusScheduled,
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		count, countErr := s.matchRepo.CountByGroup(ctx, exec, group.ID)
		if countErr != nil {
			return fmt.Errorf("failed to count matches for group %d: %w", group.ID, countErr)
		}
		match.MatchNumber = count + 1

		if createErr := s.matchRepo.Create(ctx, exec, match); createErr != nil {
			return fmt.Errorf("failed to create match: %w", createErr)
		}

		creds := &models.MatchCredentials{
			MatchID:      match.ID,
			RoomID:       input.RoomID,
			RoomPassword: input.RoomPassword,
		}
		if credErr := s.credRepo.Create(ctx, exec, creds); credErr != nil {
			return fmt.Errorf("failed to store match credentials: %w", credErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(staging.LobbyEvent{
		Type:         staging.EventMatchScheduled,
		TournamentID: group.TournamentID,
		Payload:      match,
	})
	return match, nil
}

// Start moves a scheduled match live. Both transitions are manual operator
// actions; nothing advances on the clock.
func (s *matchService) Start(ctx context.Context, matchID int) (*models.Match, error) {
	return s.transition(ctx, matchID, models.MatchStatusLive)
}

// Complete moves a live match to completed. A scheduled match cannot be
// completed without going live first.
func (s *matchService) Complete(ctx context.Context, matchID int) (*models.Match, error) {
	return s.transition(ctx, matchID, models.MatchStatusCompleted)
}

func (s *matchService) transition(ctx context.Context, matchID int, next models.MatchStatus) (*models.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if !match.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidMatchTransition, match.Status, next)
	}

	if err := s.matchRepo.UpdateStatus(ctx, match.ID, next); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d status: %w", match.ID, err)
	}
	match.Status = next

	if group, groupErr := s.groupRepo.GetByID(ctx, match.GroupID); groupErr == nil {
		s.broadcast(staging.LobbyEvent{
			Type:         staging.EventMatchStatus,
			TournamentID: group.TournamentID,
			Payload:      match,
		})
	}
	return match, nil
}

func (s *matchService) ListByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	matches, err := s.matchRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for group %d: %w", groupID, err)
	}
	return matches, nil
}

func (s *matchService) RevealCredentials(ctx context.Context, matchID int, now time.Time) (*CredentialView, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	view := &CredentialView{
		MatchID: match.ID,
		OpensAt: match.StartTime.Add(-models.CredentialRevealWindow),
	}
	if !match.CredentialsVisibleAt(now) {
		return view, nil
	}

	creds, err := s.credRepo.GetByMatch(ctx, match.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrCredentialsNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load credentials for match %d: %w", match.ID, err)
	}

	view.Visible = true
	view.RoomID = creds.RoomID
	view.RoomPassword = creds.RoomPassword
	return view, nil
}

func (s *matchService) getMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) broadcast(event staging.LobbyEvent) {
	if s.hub != nil {
		s.hub.Broadcast(event)
	}
}
