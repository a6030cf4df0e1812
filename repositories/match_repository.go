package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gamerpro/gamerpro/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchGroupInvalid   = errors.New("match references an unknown group")
	ErrCredentialsNotFound = errors.New("match credentials not found")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	CountByGroup(ctx context.Context, exec SQLExecutor, groupID int) (int, error)
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	ListByGroup(ctx context.Context, groupID int) ([]models.Match, error)
	// ListUpcomingByGroup returns scheduled and live matches ordered by start
	// time, which is what the lobby shows competitors.
	ListUpcomingByGroup(ctx context.Context, groupID int) ([]models.Match, error)
	Delete(ctx context.Context, id int) error
	CountCompleted(ctx context.Context) (int, error)
}

// MatchCredentialsRepository is the reveal read path, deliberately separate
// from the scheduling write path.
type MatchCredentialsRepository interface {
	Create(ctx context.Context, exec SQLExecutor, creds *models.MatchCredentials) error
	GetByMatch(ctx context.Context, matchID int) (*models.MatchCredentials, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (group_id, match_number, start_time, room_id, room_password, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.GroupID, m.MatchNumber, m.StartTime, m.RoomID, m.RoomPassword, m.Status,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMatchGroupInvalid
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, group_id, match_number, start_time, room_id, room_password, status, created_at
		FROM matches WHERE id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.GroupID, &m.MatchNumber, &m.StartTime, &m.RoomID, &m.RoomPassword, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) CountByGroup(ctx context.Context, exec SQLExecutor, groupID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE group_id = $1`, groupID).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	return r.list(ctx,
		`SELECT id, group_id, match_number, start_time, room_id, room_password, status, created_at
		 FROM matches WHERE group_id = $1 ORDER BY match_number`, groupID)
}

func (r *postgresMatchRepository) ListUpcomingByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	return r.list(ctx,
		`SELECT id, group_id, match_number, start_time, room_id, room_password, status, created_at
		 FROM matches
		 WHERE group_id = $1 AND status IN ($2, $3)
		 ORDER BY start_time`,
		groupID, models.MatchStatusScheduled, models.MatchStatusLive)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.GroupID, &m.MatchNumber, &m.StartTime, &m.RoomID, &m.RoomPassword, &m.Status, &m.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountCompleted(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE status = $1`, models.MatchStatusCompleted).Scan(&count)
	return count, err
}

type postgresMatchCredentialsRepository struct {
	db *sql.DB
}

func NewPostgresMatchCredentialsRepository(db *sql.DB) MatchCredentialsRepository {
	return &postgresMatchCredentialsRepository{db: db}
}

func (r *postgresMatchCredentialsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchCredentialsRepository) Create(ctx context.Context, exec SQLExecutor, c *models.MatchCredentials) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`INSERT INTO match_credentials (match_id, room_id, room_password) VALUES ($1, $2, $3)`,
		c.MatchID, c.RoomID, c.RoomPassword)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}

func (r *postgresMatchCredentialsRepository) GetByMatch(ctx context.Context, matchID int) (*models.MatchCredentials, error) {
	c := &models.MatchCredentials{}
	err := r.db.QueryRowContext(ctx,
		`SELECT match_id, room_id, room_password FROM match_credentials WHERE match_id = $1`, matchID).
		Scan(&c.MatchID, &c.RoomID, &c.RoomPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}
	return c, nil
}
