package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gamerpro/gamerpro/models"
	"github.com/lib/pq"
)

var ErrResultTeamInvalid = errors.New("match result references an unknown team")

type MatchResultRepository interface {
	// Upsert inserts a result row or overwrites the existing one for the same
	// (match, team) pair; the latest submission wins.
	Upsert(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
	ListByMatch(ctx context.Context, matchID int) ([]models.MatchResult, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchResult, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

func (r *postgresMatchResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchResultRepository) Upsert(ctx context.Context, exec SQLExecutor, res *models.MatchResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_results (match_id, team_id, placement, kills, points)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id, team_id)
		DO UPDATE SET placement = EXCLUDED.placement, kills = EXCLUDED.kills, points = EXCLUDED.points
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		res.MatchID, res.TeamID, res.Placement, res.Kills, res.Points,
	).Scan(&res.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "match_results_team_id_fkey" {
				return ErrResultTeamInvalid
			}
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}

func (r *postgresMatchResultRepository) ListByMatch(ctx context.Context, matchID int) ([]models.MatchResult, error) {
	query := `
		SELECT mr.id, mr.match_id, mr.team_id, mr.placement, mr.kills, mr.points,
		       t.id, t.name, t.owner_id, t.created_at
		FROM match_results mr
		JOIN teams t ON t.id = mr.team_id
		WHERE mr.match_id = $1
		ORDER BY mr.placement NULLS LAST, mr.points DESC`
	return r.list(ctx, query, matchID)
}

func (r *postgresMatchResultRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchResult, error) {
	query := `
		SELECT mr.id, mr.match_id, mr.team_id, mr.placement, mr.kills, mr.points,
		       t.id, t.name, t.owner_id, t.created_at
		FROM match_results mr
		JOIN teams t ON t.id = mr.team_id
		JOIN matches m ON m.id = mr.match_id
		JOIN groups g ON g.id = m.group_id
		WHERE g.tournament_id = $1
		ORDER BY m.id, mr.placement NULLS LAST`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresMatchResultRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.MatchResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		var res models.MatchResult
		var team models.Team
		if scanErr := rows.Scan(
			&res.ID, &res.MatchID, &res.TeamID, &res.Placement, &res.Kills, &res.Points,
			&team.ID, &team.Name, &team.OwnerID, &team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		res.Team = &team
		results = append(results, res)
	}
	return results, rows.Err()
}
