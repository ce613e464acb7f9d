package models

import "time"

type TeamSide string

const (
	SideA TeamSide = "A"
	SideB TeamSide = "B"
)

func (s TeamSide) Valid() bool {
	return s == SideA || s == SideB
}

// Opposite returns the other side of the match.
func (s TeamSide) Opposite() TeamSide {
	if s == SideA {
		return SideB
	}
	return SideA
}

type JoinStatus string

const (
	JoinStatusPending  JoinStatus = "pending"
	JoinStatusApproved JoinStatus = "approved"
	JoinStatusDeclined JoinStatus = "declined"
)

// RosterEntry binds a player to one side of one match. A player has at most
// one entry per match; side counts are projections of these rows.
type RosterEntry struct {
	ID         int        `json:"id" db:"id"`
	MatchID    int        `json:"match_id" db:"match_id"`
	PlayerID   int        `json:"player_id" db:"player_id"`
	TeamID     int        `json:"team_id" db:"team_id"`
	Side       TeamSide   `json:"side" db:"side"`
	JoinStatus JoinStatus `json:"join_status" db:"join_status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
