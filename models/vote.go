package models

import "time"

// MotmVote is a single man-of-the-match vote. One per (match, voter);
// insertion order is significant for the tie-break rule.
type MotmVote struct {
	ID            int       `json:"id" db:"id"`
	MatchID       int       `json:"match_id" db:"match_id"`
	VoterID       int       `json:"voter_id" db:"voter_id"`
	VotedPlayerID int       `json:"voted_player_id" db:"voted_player_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
