package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
)

// LobbyView is the competitor-facing snapshot of a tournament: the current
// stage's groups, their upcoming matches, and per-match credential views
// evaluated against the server clock at request time.
type LobbyView struct {
	Tournament     *models.Tournament     `json:"tournament"`
	Stage          models.StageState      `json:"stage"`
	Groups         []LobbyGroup           `json:"groups"`
	Qualifications []models.Qualification `json:"qualifications"`
}

type LobbyGroup struct {
	Group   models.Group `json:"group"`
	Matches []LobbyMatch `json:"matches"`
}

type LobbyMatch struct {
	Match       models.Match   `json:"match"`
	Credentials CredentialView `json:"credentials"`
}

type LobbyService interface {
	GetLobby(ctx context.Context, tournamentID int, now time.Time) (*LobbyView, error)
}

type lobbyService struct {
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	matchRepo      repositories.MatchRepository
	credRepo       repositories.MatchCredentialsRepository
	qualRepo       repositories.QualificationRepository
}

func NewLobbyService(
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	credRepo repositories.MatchCredentialsRepository,
	qualRepo repositories.QualificationRepository,
) LobbyService {
	return &lobbyService{
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		matchRepo:      matchRepo,
		credRepo:       credRepo,
		qualRepo:       qualRepo,
	}
}

func (s *lobbyService) GetLobby(ctx context.Context, tournamentID int, now time.Time) (*LobbyView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	state, err := tournament.StageState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	groups, err := s.groupRepo.ListByTournamentAndStage(ctx, tournament.ID, state.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for stage %q: %w", state.Name, err)
	}

	view := &LobbyView{
		Tournament: tournament,
		Stage:      state,
		Groups:     make([]LobbyGroup, 0, len(groups)),
	}

	for _, group := range groups {
		matches, listErr := s.matchRepo.ListUpcomingByGroup(ctx, group.ID)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list matches for group %d: %w", group.ID, listErr)
		}

		lobbyGroup := LobbyGroup{Group: group, Matches: make([]LobbyMatch, 0, len(matches))}
		for _, match := range matches {
			cred, credErr := s.credentialView(ctx, match, now)
			if credErr != nil {
				return nil, credErr
			}
			lobbyGroup.Matches = append(lobbyGroup.Matches, LobbyMatch{Match: match, Credentials: cred})
		}
		view.Groups = append(view.Groups, lobbyGroup)
	}

	quals, err := s.qualRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	view.Qualifications = quals

	return view, nil
}

func (s *lobbyService) credentialView(ctx context.Context, match models.Match, now time.Time) (CredentialView, error) {
	view := CredentialView{
		MatchID: match.ID,
		OpensAt: match.StartTime.Add(-models.CredentialRevealWindow),
	}
	if !match.CredentialsVisibleAt(now) {
		return view, nil
	}

	creds, err := s.credRepo.GetByMatch(ctx, match.ID)
	if err != nil {
		// A scheduled match always has a credentials row; treat a missing one
		// as still hidden rather than failing the whole lobby.
		if errors.Is(err, repositories.ErrCredentialsNotFound) {
			return view, nil
		}
		return view, fmt.Errorf("failed to load credentials for match %d: %w", match.ID, err)
	}

	view.Visible = true
	view.RoomID = creds.RoomID
	view.RoomPassword = creds.RoomPassword
	return view, nil
}
