// Package notify carries state-transition events from the match core to the
// delivery sink. Delivery is fire-and-forget: a failed broadcast never rolls
// back the transition that produced it.
package notify

import "context"

type EventType string

const (
	EventJoinRequest    EventType = "join_request"
	EventJoinApproved   EventType = "join_approved"
	EventJoinDeclined   EventType = "join_declined"
	EventScoreRequest   EventType = "score_request"
	EventScoreConfirmed EventType = "score_confirmed"
	EventScoreConflict  EventType = "score_conflict"
	EventScoreNull      EventType = "score_null"
	EventMotmWinner     EventType = "motm_winner"
	EventRatingOpen     EventType = "rating_open"
)

// Event is the tagged variant published on every transition. Only the fields
// relevant to the Type are set; consumers switch on Type instead of
// re-parsing loose JSON blobs.
type Event struct {
	Type    EventType `json:"type"`
	MatchID int       `json:"match_id"`

	// PlayerID addresses the player the event concerns: the join requester,
	// the captain asked to submit, the MOTM winner.
	PlayerID *int `json:"player_id,omitempty"`
	TeamID   *int `json:"team_id,omitempty"`

	// Conflicting submissions, present on score_conflict only.
	SubmittedA *string `json:"submitted_a,omitempty"`
	SubmittedB *string `json:"submitted_b,omitempty"`

	// Final result "X-Y", present on score_confirmed only.
	FinalScore *string `json:"final_score,omitempty"`
}

// Notifier is the fan-out sink consumed by the services. Implementations
// must not block the caller on slow receivers.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}
