package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gamerpro/gamerpro/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("team is already registered for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	Delete(ctx context.Context, id int) error
	FindByTournamentAndTeam(ctx context.Context, tournamentID, teamID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	// ListTeamIDs returns the registered team IDs for a tournament, which is
	// the eligibility pool of the tournament's first stage.
	ListTeamIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO tournament_registrations (tournament_id, team_id)
		VALUES ($1, $2)
		RETURNING id, registered_at`

	err := r.db.QueryRowContext(ctx, query, reg.TournamentID, reg.TeamID).
		Scan(&reg.ID, &reg.RegisteredAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrRegistrationConflict
			case "23503":
				if pqErr.Constraint == "tournament_registrations_team_id_fkey" {
					return ErrTeamNotFound
				}
				return ErrTournamentNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) FindByTournamentAndTeam(ctx context.Context, tournamentID, teamID int) (*models.Registration, error) {
	query := `
		SELECT id, tournament_id, team_id, registered_at
		FROM tournament_registrations
		WHERE tournament_id = $1 AND team_id = $2`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, teamID).
		Scan(&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error) {
	query := `
		SELECT r.id, r.tournament_id, r.team_id, r.registered_at,
		       t.id, t.name, t.join_code, t.owner_id, t.created_at
		FROM tournament_registrations r
		JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = $1
		ORDER BY r.registered_at`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var team models.Team
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.RegisteredAt,
			&team.ID, &team.Name, &team.JoinCode, &team.OwnerID, &team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		reg.Team = &team
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_registrations WHERE tournament_id = $1`, tournamentID).
		Scan(&count)
	return count, err
}

func (r *postgresRegistrationRepository) ListTeamIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT team_id FROM tournament_registrations WHERE tournament_id = $1 ORDER BY id`, tournamentID)
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
