package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sundayleague/match-system/models"
)

var (
	ErrProposalNotFound         = errors.New("opponent proposal not found")
	ErrProposalDuplicatePending = errors.New("team already has a pending proposal for this match")
	ErrProposalTeamInvalid      = errors.New("proposal match or team conflict or invalid")
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.OpponentProposal) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.OpponentProposal, error)
	ListByMatch(ctx context.Context, matchID int) ([]*models.OpponentProposal, error)
	HasPendingForTeam(ctx context.Context, matchID, teamID int) (bool, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ProposalStatus) error
	RejectPendingExcept(ctx context.Context, exec SQLExecutor, matchID, exceptID int) (int64, error)
}

type postgresProposalRepository struct {
	db *sql.DB
}

func NewPostgresProposalRepository(db *sql.DB) ProposalRepository {
	return &postgresProposalRepository{db: db}
}

func (r *postgresProposalRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresProposalRepository) Create(ctx context.Context, proposal *models.OpponentProposal) error {
	query := `
		INSERT INTO opponent_proposals (match_id, team_id, kind, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		proposal.MatchID,
		proposal.TeamID,
		proposal.Kind,
		proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt)

	return r.handleProposalError(err)
}

func (r *postgresProposalRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.OpponentProposal, error) {
	query := `
		SELECT id, match_id, team_id, kind, status, created_at
		FROM opponent_proposals WHERE id = $1`

	proposal := &models.OpponentProposal{}
	err := r.exec(exec).QueryRowContext(ctx, query, id).Scan(
		&proposal.ID,
		&proposal.MatchID,
		&proposal.TeamID,
		&proposal.Kind,
		&proposal.Status,
		&proposal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

func (r *postgresProposalRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.OpponentProposal, error) {
	query := `
		SELECT id, match_id, team_id, kind, status, created_at
		FROM opponent_proposals
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := make([]*models.OpponentProposal, 0)
	for rows.Next() {
		var proposal models.OpponentProposal
		if scanErr := rows.Scan(
			&proposal.ID,
			&proposal.MatchID,
			&proposal.TeamID,
			&proposal.Kind,
			&proposal.Status,
			&proposal.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		proposals = append(proposals, &proposal)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *postgresProposalRepository) HasPendingForTeam(ctx context.Context, matchID, teamID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM opponent_proposals WHERE match_id = $1 AND team_id = $2 AND status = $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, matchID, teamID, models.ProposalStatusPending).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresProposalRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ProposalStatus) error {
	query := `UPDATE opponent_proposals SET status = $1 WHERE id = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// RejectPendingExcept flips every other pending proposal for the match to
// rejected: first-confirmed-wins, no merge.
func (r *postgresProposalRepository) RejectPendingExcept(ctx context.Context, exec SQLExecutor, matchID, exceptID int) (int64, error) {
	query := `UPDATE opponent_proposals SET status = $1 WHERE match_id = $2 AND status = $3 AND id <> $4`
	result, err := r.exec(exec).ExecContext(ctx, query, models.ProposalStatusRejected, matchID, models.ProposalStatusPending, exceptID)
	if err != nil {
		return 0, err
	}
	return checkRowsAffected(result)
}

func (r *postgresProposalRepository) handleProposalError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation (partial index on pending proposals)
			return ErrProposalDuplicatePending
		case "23503": // foreign_key_violation
			return ErrProposalTeamInvalid
		}
	}
	return err
}
