package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sundayleague/match-system/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	AddPoints(ctx context.Context, exec SQLExecutor, playerID, delta int) error
	ApplyRatingDelta(ctx context.Context, exec SQLExecutor, playerID, scoreSum, count int) error
	IncrementMotmCount(ctx context.Context, exec SQLExecutor, playerID int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, nickname, total_points, total_ratings, rating_count, motm_count, created_at
		FROM players WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.Nickname,
		&player.TotalPoints,
		&player.TotalRatings,
		&player.RatingCount,
		&player.MotmCount,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) applyDelta(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) error {
	result, err := r.exec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (r *postgresPlayerRepository) AddPoints(ctx context.Context, exec SQLExecutor, playerID, delta int) error {
	query := `UPDATE players SET total_points = total_points + $1 WHERE id = $2`
	return r.applyDelta(ctx, exec, query, delta, playerID)
}

// ApplyRatingDelta increments the running rating sum and count once per
// received batch entry. Average queries divide total_ratings / rating_count.
func (r *postgresPlayerRepository) ApplyRatingDelta(ctx context.Context, exec SQLExecutor, playerID, scoreSum, count int) error {
	query := `UPDATE players SET total_ratings = total_ratings + $1, rating_count = rating_count + $2 WHERE id = $3`
	return r.applyDelta(ctx, exec, query, scoreSum, count, playerID)
}

func (r *postgresPlayerRepository) IncrementMotmCount(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `UPDATE players SET motm_count = motm_count + 1 WHERE id = $1`
	return r.applyDelta(ctx, exec, query, playerID)
}
