package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sundayleague/match-system/models"
)

var (
	ErrVoteDuplicate    = errors.New("voter already voted in this match")
	ErrVoteMatchInvalid = errors.New("vote match or player conflict or invalid")
)

type VoteRepository interface {
	Create(ctx context.Context, exec SQLExecutor, vote *models.MotmVote) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MotmVote, error)
	ExistsForVoter(ctx context.Context, exec SQLExecutor, matchID, voterID int) (bool, error)
}

type postgresVoteRepository struct {
	db *sql.DB
}

func NewPostgresVoteRepository(db *sql.DB) VoteRepository {
	return &postgresVoteRepository{db: db}
}

func (r *postgresVoteRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresVoteRepository) Create(ctx context.Context, exec SQLExecutor, vote *models.MotmVote) error {
	query := `
		INSERT INTO motm_votes (match_id, voter_id, voted_player_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		vote.MatchID,
		vote.VoterID,
		vote.VotedPlayerID,
	).Scan(&vote.ID, &vote.CreatedAt)

	return r.handleVoteError(err)
}

// ListByMatch returns votes in insertion order; the tally's tie-break
// depends on it.
func (r *postgresVoteRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MotmVote, error) {
	query := `
		SELECT id, match_id, voter_id, voted_player_id, created_at
		FROM motm_votes
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make([]*models.MotmVote, 0)
	for rows.Next() {
		var vote models.MotmVote
		if scanErr := rows.Scan(
			&vote.ID,
			&vote.MatchID,
			&vote.VoterID,
			&vote.VotedPlayerID,
			&vote.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		votes = append(votes, &vote)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *postgresVoteRepository) ExistsForVoter(ctx context.Context, exec SQLExecutor, matchID, voterID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM motm_votes WHERE match_id = $1 AND voter_id = $2)`
	var exists bool
	if err := r.exec(exec).QueryRowContext(ctx, query, matchID, voterID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresVoteRepository) handleVoteError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "motm_votes_match_id_voter_id_key" {
				return ErrVoteDuplicate
			}
		case "23503": // foreign_key_violation
			return ErrVoteMatchInvalid
		}
	}
	return err
}
