package repositories

import (
	"context"
	"database/sql"
)

// PlatformStats are the headline counters shown on the dashboard and in the
// Discord /stats command.
type PlatformStats struct {
	Tournaments   int `json:"tournaments"`
	ActiveTeams   int `json:"active_teams"`
	MatchesPlayed int `json:"matches_played"`
}

type StatsRepository interface {
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM tournaments),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM matches WHERE status = 'completed')`

	stats := &PlatformStats{}
	err := r.db.QueryRowContext(ctx, query).
		Scan(&stats.Tournaments, &stats.ActiveTeams, &stats.MatchesPlayed)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
