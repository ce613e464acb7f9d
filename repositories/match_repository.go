package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/sundayleague/match-system/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error)
	CloseExpiredRatingWindows(ctx context.Context, now time.Time) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, type, status, format, team_a_id, team_b_id,
		score_submitted_by_a, score_submitted_by_b, score_conflict_count,
		score_a, score_b, ratings_open, motm_voting_open, ratings_close_at,
		motm_winner_id, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (type, status, format, team_a_id, team_b_id, score_conflict_count, ratings_open, motm_voting_open)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		match.Type,
		match.Status,
		match.Format,
		match.TeamAID,
		match.TeamBID,
		match.ScoreConflictCount,
		match.RatingsOpen,
		match.MotmVotingOpen,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func scanMatch(row *sql.Row) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.Type,
		&match.Status,
		&match.Format,
		&match.TeamAID,
		&match.TeamBID,
		&match.ScoreSubmittedByA,
		&match.ScoreSubmittedByB,
		&match.ScoreConflictCount,
		&match.ScoreA,
		&match.ScoreB,
		&match.RatingsOpen,
		&match.MotmVotingOpen,
		&match.RatingsCloseAt,
		&match.MotmWinnerID,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate takes a row lock so that the caller's transaction is the
// single writer for this match until commit.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(r.exec(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET status = $1, team_b_id = $2,
			score_submitted_by_a = $3, score_submitted_by_b = $4, score_conflict_count = $5,
			score_a = $6, score_b = $7,
			ratings_open = $8, motm_voting_open = $9, ratings_close_at = $10, motm_winner_id = $11
		WHERE id = $12`

	result, err := r.exec(exec).ExecContext(ctx, query,
		match.Status,
		match.TeamBID,
		match.ScoreSubmittedByA,
		match.ScoreSubmittedByB,
		match.ScoreConflictCount,
		match.ScoreA,
		match.ScoreB,
		match.RatingsOpen,
		match.MotmVotingOpen,
		match.RatingsCloseAt,
		match.MotmWinnerID,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// CancelStalePending is the idempotent sweep target: pending matches created
// before the cutoff are cancelled in one statement.
func (r *postgresMatchRepository) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE matches SET status = $1 WHERE status = $2 AND created_at < $3`
	result, err := r.db.ExecContext(ctx, query, models.MatchStatusCancelled, models.MatchStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return checkRowsAffected(result)
}

func (r *postgresMatchRepository) CloseExpiredRatingWindows(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE matches SET ratings_open = FALSE WHERE ratings_open = TRUE AND ratings_close_at IS NOT NULL AND ratings_close_at <= $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return checkRowsAffected(result)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_team_a_id_fkey", "matches_team_b_id_fkey", "matches_motm_winner_id_fkey":
				return ErrMatchTeamInvalid
			}
		}
	}
	return err
}
