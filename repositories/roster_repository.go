package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sundayleague/match-system/models"
)

var (
	ErrRosterEntryNotFound  = errors.New("roster entry not found")
	ErrRosterDuplicateEntry = errors.New("player already has a roster entry for this match")
	ErrRosterMatchInvalid   = errors.New("roster match or player conflict or invalid")
)

type RosterRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.RosterEntry) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RosterEntry, error)
	GetByMatchAndPlayer(ctx context.Context, matchID, playerID int) (*models.RosterEntry, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.RosterEntry, error)
	CountApproved(ctx context.Context, exec SQLExecutor, matchID int, side models.TeamSide) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.JoinStatus) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.RosterEntry) error {
	query := `
		INSERT INTO roster_entries (match_id, player_id, team_id, side, join_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		entry.MatchID,
		entry.PlayerID,
		entry.TeamID,
		entry.Side,
		entry.JoinStatus,
	).Scan(&entry.ID, &entry.CreatedAt)

	return r.handleRosterError(err)
}

func scanRosterEntry(row *sql.Row) (*models.RosterEntry, error) {
	entry := &models.RosterEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.MatchID,
		&entry.PlayerID,
		&entry.TeamID,
		&entry.Side,
		&entry.JoinStatus,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *postgresRosterRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RosterEntry, error) {
	query := `
		SELECT id, match_id, player_id, team_id, side, join_status, created_at
		FROM roster_entries WHERE id = $1`
	return scanRosterEntry(r.exec(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresRosterRepository) GetByMatchAndPlayer(ctx context.Context, matchID, playerID int) (*models.RosterEntry, error) {
	query := `
		SELECT id, match_id, player_id, team_id, side, join_status, created_at
		FROM roster_entries WHERE match_id = $1 AND player_id = $2`
	return scanRosterEntry(r.db.QueryRowContext(ctx, query, matchID, playerID))
}

func (r *postgresRosterRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.RosterEntry, error) {
	query := `
		SELECT id, match_id, player_id, team_id, side, join_status, created_at
		FROM roster_entries
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.MatchID,
			&entry.PlayerID,
			&entry.TeamID,
			&entry.Side,
			&entry.JoinStatus,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountApproved is the capacity projection: always counted from rows, never
// cached.
func (r *postgresRosterRepository) CountApproved(ctx context.Context, exec SQLExecutor, matchID int, side models.TeamSide) (int, error) {
	query := `
		SELECT COUNT(*) FROM roster_entries
		WHERE match_id = $1 AND side = $2 AND join_status = $3`

	var count int
	err := r.exec(exec).QueryRowContext(ctx, query, matchID, side, models.JoinStatusApproved).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresRosterRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.JoinStatus) error {
	query := `UPDATE roster_entries SET join_status = $1 WHERE id = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrRosterEntryNotFound
	}
	return nil
}

func (r *postgresRosterRepository) handleRosterError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "roster_entries_match_id_player_id_key" {
				return ErrRosterDuplicateEntry
			}
		case "23503": // foreign_key_violation
			return ErrRosterMatchInvalid
		}
	}
	return err
}
