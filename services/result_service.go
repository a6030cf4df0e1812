package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
	"github.com/gamerpro/gamerpro/staging"
)

// ResultEntry is one team's submitted outcome for a match. Qualified marks the
// team as advancing out of the current stage.
type ResultEntry struct {
	TeamID    int  `json:"team_id"`
	Placement *int `json:"placement"`
	Kills     int  `json:"kills"`
	Points    int  `json:"points"`
	Qualified bool `json:"qualified"`
}

type ResultService interface {
	// SubmitResults records the outcomes of one match and, for entries flagged
	// qualified, writes qualification rows feeding the next stage's pool.
	// Re-submitting for the same match overwrites previous rows per team.
	SubmitResults(ctx context.Context, matchID int, entries []ResultEntry) ([]models.MatchResult, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.MatchResult, error)
	ListQualifications(ctx context.Context, tournamentID int) ([]models.Qualification, error)
}

type resultService struct {
	txRunner       repositories.TxRunner
	matchRepo      repositories.MatchRepository
	groupRepo      repositories.GroupRepository
	tournamentRepo repositories.TournamentRepository
	resultRepo     repositories.MatchResultRepository
	qualRepo       repositories.QualificationRepository
	hub            *staging.Hub
}

func NewResultService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	groupRepo repositories.GroupRepository,
	tournamentRepo repositories.TournamentRepository,
	resultRepo repositories.MatchResultRepository,
	qualRepo repositories.QualificationRepository,
	hub *staging.Hub,
) ResultService {
	return &resultService{
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		groupRepo:      groupRepo,
		tournamentRepo: tournamentRepo,
		resultRepo:     resultRepo,
		qualRepo:       qualRepo,
		hub:            hub,
	}
}

func (s *resultService) SubmitResults(ctx context.Context, matchID int, entries []ResultEntry) ([]models.MatchResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: at least one result entry is required", ErrValidationFailed)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, match.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, group.TournamentID)
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

	// Qualification out of the final stage makes no sense: there is no next
	// stage to qualify into. Reject the whole submission before writing.
	if state.IsLast {
		for _, entry := range entries {
			if entry.Qualified {
				return nil, ErrFinalStage
			}
		}
	}

	saved := make([]models.MatchResult, 0, len(entries))
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, entry := range entries {
			result := models.MatchResult{
				MatchID:   match.ID,
				TeamID:    entry.TeamID,
				Placement: entry.Placement,
				Kills:     entry.Kills,
				Points:    entry.Points,
			}
			if upsertErr := s.resultRepo.Upsert(ctx, exec, &result); upsertErr != nil {
				if errors.Is(upsertErr, repositories.ErrResultTeamInvalid) {
					return fmt.Errorf("%w: team %d", ErrTeamNotFound, entry.TeamID)
				}
				return fmt.Errorf("failed to record result for team %d: %w", entry.TeamID, upsertErr)
			}
			saved = append(saved, result)

			if !entry.Qualified {
				continue
			}
			qual := models.Qualification{
				TournamentID: tournament.ID,
				TeamID:       entry.TeamID,
				FromStage:    state.Name,
				ToStage:      state.Next,
				StageNumber:  state.Index + 1,
			}
			if qualErr := s.qualRepo.Upsert(ctx, exec, &qual); qualErr != nil {
				if errors.Is(qualErr, repositories.ErrQualificationTeamInvalid) {
					return fmt.Errorf("%w: team %d", ErrTeamNotFound, entry.TeamID)
				}
				return fmt.Errorf("failed to qualify team %d: %w", entry.TeamID, qualErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(staging.LobbyEvent{
			Type:         staging.EventResultsRecorded,
			TournamentID: tournament.ID,
			Payload:      map[string]interface{}{"match_id": match.ID, "results": saved},
		})
	}
	return saved, nil
}

func (s *resultService) ListByMatch(ctx context.Context, matchID int) ([]models.MatchResult, error) {
	results, err := s.resultRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for match %d: %w", matchID, err)
	}
	return results, nil
}

func (s *resultService) ListQualifications(ctx context.Context, tournamentID int) ([]models.Qualification, error) {
	quals, err := s.qualRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications for tournament %d: %w", tournamentID, err)
	}
	return quals, nil
}
