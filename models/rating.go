package models

import "time"

// Rating is one peer rating inside a captain's post-match batch.
// Rater and rated player are always on opposite sides of the match.
type Rating struct {
	ID            int       `json:"id" db:"id"`
	MatchID       int       `json:"match_id" db:"match_id"`
	RaterID       int       `json:"rater_id" db:"rater_id"`
	RatedPlayerID int       `json:"rated_player_id" db:"rated_player_id"`
	Score         int       `json:"score" db:"score"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
