package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gamerpro/gamerpro/models"
	"github.com/lib/pq"
)

var ErrQualificationTeamInvalid = errors.New("qualification references an unknown team")

type QualificationRepository interface {
	// Upsert inserts a qualification or overwrites the existing row for the
	// same (tournament, team, from_stage) triple.
	Upsert(ctx context.Context, exec SQLExecutor, q *models.Qualification) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Qualification, error)
	// ListTeamIDsByToStage returns the team IDs qualified into the named
	// stage, which is that stage's eligibility pool.
	ListTeamIDsByToStage(ctx context.Context, exec SQLExecutor, tournamentID int, toStage string) ([]int, error)
}

type postgresQualificationRepository struct {
	db *sql.DB
}

func NewPostgresQualificationRepository(db *sql.DB) QualificationRepository {
	return &postgresQualificationRepository{db: db}
}

func (r *postgresQualificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresQualificationRepository) Upsert(ctx context.Context, exec SQLExecutor, q *models.Qualification) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO qualifications (tournament_id, team_id, from_stage, to_stage, stage_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_id, team_id, from_stage)
		DO UPDATE SET to_stage = EXCLUDED.to_stage, stage_number = EXCLUDED.stage_number
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		q.TournamentID, q.TeamID, q.FromStage, q.ToStage, q.StageNumber,
	).Scan(&q.ID, &q.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "qualifications_team_id_fkey" {
				return ErrQualificationTeamInvalid
			}
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (r *postgresQualificationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Qualification, error) {
	query := `
		SELECT q.id, q.tournament_id, q.team_id, q.from_stage, q.to_stage, q.stage_number, q.created_at,
		       t.id, t.name, t.owner_id, t.created_at
		FROM qualifications q
		JOIN teams t ON t.id = q.team_id
		WHERE q.tournament_id = $1
		ORDER BY q.stage_number, q.id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quals := make([]models.Qualification, 0)
	for rows.Next() {
		var q models.Qualification
		var team models.Team
		if scanErr := rows.Scan(
			&q.ID, &q.TournamentID, &q.TeamID, &q.FromStage, &q.ToStage, &q.StageNumber, &q.CreatedAt,
			&team.ID, &team.Name, &team.OwnerID, &team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		q.Team = &team
		quals = append(quals, q)
	}
	return quals, rows.Err()
}

func (r *postgresQualificationRepository) ListTeamIDsByToStage(ctx context.Context, exec SQLExecutor, tournamentID int, toStage string) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT team_id FROM qualifications WHERE tournament_id = $1 AND to_stage = $2 ORDER BY id`,
		tournamentID, toStage)
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
