package models

import "time"

// Player carries the running per-player counters. All four are mutated only
// by in-transaction deltas alongside the state transition that earns them,
// never recomputed by re-scanning history.
type Player struct {
	ID           int       `json:"id" db:"id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	TotalPoints  int       `json:"total_points" db:"total_points"`
	TotalRatings int       `json:"total_ratings" db:"total_ratings"`
	RatingCount  int       `json:"rating_count" db:"rating_count"`
	MotmCount    int       `json:"motm_count" db:"motm_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AverageRating divides the running sum by the running count.
func (p *Player) AverageRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	return float64(p.TotalRatings) / float64(p.RatingCount)
}
