package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sundayleague/match-system/models"
)

var (
	ErrRatingDuplicate    = errors.New("rating already exists for this rater and player")
	ErrRatingMatchInvalid = errors.New("rating match or player conflict or invalid")
)

type RatingRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, ratings []*models.Rating) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.Rating, error)
	ExistsForRater(ctx context.Context, exec SQLExecutor, matchID, raterID int) (bool, error)
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

func (r *postgresRatingRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch inserts a captain's full rating batch. Callers wrap it in a
// transaction together with the per-player counter deltas.
func (r *postgresRatingRepository) CreateBatch(ctx context.Context, exec SQLExecutor, ratings []*models.Rating) error {
	query := `
		INSERT INTO ratings (match_id, rater_id, rated_player_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	for _, rating := range ratings {
		err := r.exec(exec).QueryRowContext(ctx, query,
			rating.MatchID,
			rating.RaterID,
			rating.RatedPlayerID,
			rating.Score,
		).Scan(&rating.ID, &rating.CreatedAt)
		if err != nil {
			return r.handleRatingError(err)
		}
	}
	return nil
}

func (r *postgresRatingRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Rating, error) {
	query := `
		SELECT id, match_id, rater_id, rated_player_id, score, created_at
		FROM ratings
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]*models.Rating, 0)
	for rows.Next() {
		var rating models.Rating
		if scanErr := rows.Scan(
			&rating.ID,
			&rating.MatchID,
			&rating.RaterID,
			&rating.RatedPlayerID,
			&rating.Score,
			&rating.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		ratings = append(ratings, &rating)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *postgresRatingRepository) ExistsForRater(ctx context.Context, exec SQLExecutor, matchID, raterID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ratings WHERE match_id = $1 AND rater_id = $2)`
	var exists bool
	if err := r.exec(exec).QueryRowContext(ctx, query, matchID, raterID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRatingRepository) handleRatingError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrRatingDuplicate
		case "23503": // foreign_key_violation
			return ErrRatingMatchInvalid
		}
	}
	return err
}
