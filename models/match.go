package models

import "time"

type MatchType string

const (
	MatchTypePublic   MatchType = "public"
	MatchTypeFriendly MatchType = "friendly"
)

func (t MatchType) Valid() bool {
	return t == MatchTypePublic || t == MatchTypeFriendly
}

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusConfirmed  MatchStatus = "confirmed"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusNullResult MatchStatus = "null_result"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

// Terminal reports whether the status accepts no further lifecycle writes.
// Rating and MOTM sub-flows are gated by their own flags, not by this.
func (s MatchStatus) Terminal() bool {
	switch s {
	case MatchStatusCompleted, MatchStatusNullResult, MatchStatusCancelled:
		return true
	}
	return false
}

type MatchFormat string

const (
	MatchFormat5v5   MatchFormat = "5v5"
	MatchFormat8v8   MatchFormat = "8v8"
	MatchFormat11v11 MatchFormat = "11v11"
)

func (f MatchFormat) Valid() bool {
	return f == MatchFormat5v5 || f == MatchFormat8v8 || f == MatchFormat11v11
}

// MaxPlayersPerTeam returns the roster capacity per side fixed by the format.
func (f MatchFormat) MaxPlayersPerTeam() int {
	switch f {
	case MatchFormat5v5:
		return 5
	case MatchFormat8v8:
		return 8
	case MatchFormat11v11:
		return 11
	}
	return 0
}

type Match struct {
	ID     int         `json:"id" db:"id"`
	Type   MatchType   `json:"type" db:"type"`
	Status MatchStatus `json:"status" db:"status"`
	Format MatchFormat `json:"format" db:"format"`

	TeamAID int  `json:"team_a_id" db:"team_a_id"`
	TeamBID *int `json:"team_b_id,omitempty" db:"team_b_id"`

	// Transient "X-Y" strings, cleared on every conflict cycle.
	ScoreSubmittedByA  *string `json:"-" db:"score_submitted_by_a"`
	ScoreSubmittedByB  *string `json:"-" db:"score_submitted_by_b"`
	ScoreConflictCount int     `json:"score_conflict_count" db:"score_conflict_count"`

	// Final result, set exactly once on the transition into completed.
	ScoreA *int `json:"score_a,omitempty" db:"score_a"`
	ScoreB *int `json:"score_b,omitempty" db:"score_b"`

	RatingsOpen    bool       `json:"ratings_open" db:"ratings_open"`
	MotmVotingOpen bool       `json:"motm_voting_open" db:"motm_voting_open"`
	RatingsCloseAt *time.Time `json:"ratings_close_at,omitempty" db:"ratings_close_at"`
	MotmWinnerID   *int       `json:"motm_winner_id,omitempty" db:"motm_winner_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
