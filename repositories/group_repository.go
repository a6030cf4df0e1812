package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gamerpro/gamerpro/models"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupTeamInvalid = errors.New("group membership references an unknown team")
)

type GroupRepository interface {
	// AcquireStageLock takes a transaction-scoped advisory lock on the
	// tournament so two operators cannot interleave regeneration of the same
	// stage. Released automatically at commit or rollback.
	AcquireStageLock(ctx context.Context, exec SQLExecutor, tournamentID int) error
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	AddTeams(ctx context.Context, exec SQLExecutor, groupID int, teamIDs []int) error
	DeleteByTournamentAndStage(ctx context.Context, exec SQLExecutor, tournamentID int, stageName string) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Group, error)
	ListByTournamentAndStage(ctx context.Context, tournamentID int, stageName string) ([]models.Group, error)
	ListTeamIDs(ctx context.Context, groupID int) ([]int, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) AcquireStageLock(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, tournamentID)
	return err
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (tournament_id, stage_name, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, g.TournamentID, g.StageName, g.Name).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (r *postgresGroupRepository) AddTeams(ctx context.Context, exec SQLExecutor, groupID int, teamIDs []int) error {
	if len(teamIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO group_teams (group_id, team_id)
		SELECT $1, unnest($2::int[])`

	_, err := executor.ExecContext(ctx, query, groupID, pq.Array(teamIDs))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "group_teams_team_id_fkey" {
				return ErrGroupTeamInvalid
			}
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}

// DeleteByTournamentAndStage removes the groups of one stage only; membership
// rows go with them via ON DELETE CASCADE. Groups of other stages survive.
func (r *postgresGroupRepository) DeleteByTournamentAndStage(ctx context.Context, exec SQLExecutor, tournamentID int, stageName string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM groups WHERE tournament_id = $1 AND stage_name = $2`, tournamentID, stageName)
	return err
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `
		SELECT id, tournament_id, stage_name, name, created_at
		FROM groups WHERE id = $1`

	g := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&g.ID, &g.TournamentID, &g.StageName, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Group, error) {
	return r.list(ctx,
		`SELECT id, tournament_id, stage_name, name, created_at
		 FROM groups WHERE tournament_id = $1 ORDER BY name`, tournamentID)
}

func (r *postgresGroupRepository) ListByTournamentAndStage(ctx context.Context, tournamentID int, stageName string) ([]models.Group, error) {
	return r.list(ctx,
		`SELECT id, tournament_id, stage_name, name, created_at
		 FROM groups WHERE tournament_id = $1 AND stage_name = $2 ORDER BY name`, tournamentID, stageName)
}

func (r *postgresGroupRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if scanErr := rows.Scan(&g.ID, &g.TournamentID, &g.StageName, &g.Name, &g.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		if err := r.populateTeams(ctx, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (r *postgresGroupRepository) populateTeams(ctx context.Context, g *models.Group) error {
	query := `
		SELECT gt.id, gt.group_id, gt.team_id, t.id, t.name, t.owner_id, t.created_at
		FROM group_teams gt
		JOIN teams t ON t.id = gt.team_id
		WHERE gt.group_id = $1
		ORDER BY gt.id`

	rows, err := r.db.QueryContext(ctx, query, g.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	g.Teams = make([]models.GroupTeam, 0)
	for rows.Next() {
		var gt models.GroupTeam
		var team models.Team
		if scanErr := rows.Scan(&gt.ID, &gt.GroupID, &gt.TeamID,
			&team.ID, &team.Name, &team.OwnerID, &team.CreatedAt); scanErr != nil {
			return scanErr
		}
		gt.Team = &team
		g.Teams = append(g.Teams, gt)
	}
	return rows.Err()
}

func (r *postgresGroupRepository) ListTeamIDs(ctx context.Context, groupID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id FROM group_teams WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
