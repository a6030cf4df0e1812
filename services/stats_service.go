package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
)

// StandingsRow is one team's aggregate across every completed match of a
// tournament, ordered by points then kills.
type StandingsRow struct {
	TeamID   int          `json:"team_id"`
	Team     *models.Team `json:"team,omitempty"`
	Matches  int          `json:"matches"`
	Kills    int          `json:"kills"`
	Points   int          `json:"points"`
	BestRank *int         `json:"best_rank,omitempty"`
}

type StatsService interface {
	PlatformStats(ctx context.Context) (*repositories.PlatformStats, error)
	Standings(ctx context.Context, tournamentID int) ([]StandingsRow, error)
}

type statsService struct {
	statsRepo  repositories.StatsRepository
	resultRepo repositories.MatchResultRepository
}

func NewStatsService(statsRepo repositories.StatsRepository, resultRepo repositories.MatchResultRepository) StatsService {
	return &statsService{statsRepo: statsRepo, resultRepo: resultRepo}
}

func (s *statsService) PlatformStats(ctx context.Context) (*repositories.PlatformStats, error) {
	stats, err := s.statsRepo.GetPlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) Standings(ctx context.Context, tournamentID int) ([]StandingsRow, error) {
	results, err := s.resultRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for tournament %d: %w", tournamentID, err)
	}

	byTeam := make(map[int]*StandingsRow)
	for _, res := range results {
		row, ok := byTeam[res.TeamID]
		if !ok {
			row = &StandingsRow{TeamID: res.TeamID, Team: res.Team}
			byTeam[res.TeamID] = row
		}
		row.Matches++
		row.Kills += res.Kills
		row.Points += res.Points
		if res.Placement != nil && (row.BestRank == nil || *res.Placement < *row.BestRank) {
			rank := *res.Placement
			row.BestRank = &rank
		}
	}

	rows := make([]StandingsRow, 0, len(byTeam))
	for _, row := range byTeam {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Kills != rows[j].Kills {
			return rows[i].Kills > rows[j].Kills
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	return rows, nil
}
