package models

import "time"

type ProposalKind string

const (
	// ProposalInvite is filed by the hosting captain toward a specific team.
	ProposalInvite ProposalKind = "invite"
	// ProposalChallenge is filed by the captain of the challenging team.
	ProposalChallenge ProposalKind = "challenge"
)

func (k ProposalKind) Valid() bool {
	return k == ProposalInvite || k == ProposalChallenge
}

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// OpponentProposal is a candidate assignment of team B to a pending match.
// Exactly one proposal per match can ever be accepted; acceptance rejects
// every other pending proposal in the same transaction.
type OpponentProposal struct {
	ID        int            `json:"id" db:"id"`
	MatchID   int            `json:"match_id" db:"match_id"`
	TeamID    int            `json:"team_id" db:"team_id"`
	Kind      ProposalKind   `json:"kind" db:"kind"`
	Status    ProposalStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
