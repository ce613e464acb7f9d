package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrMatchNotFound       = errors.New("match not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrProposalNotFound    = errors.New("opponent proposal not found")
	ErrRosterEntryNotFound = errors.New("roster entry not found")

	// Доступ запрещён (не та роль)
	ErrNotCaptain           = errors.New("only a captain of this match can perform this action")
	ErrNotRosterMember      = errors.New("player is not an approved roster member of this match")
	ErrWrongSideTarget      = errors.New("rating targets must be approved players on the opposing side")
	ErrCaptainAlreadyMember = errors.New("captain is seated at match creation and cannot re-join")

	// Операция вне допустимого состояния матча
	ErrInvalidMatchState  = errors.New("operation not allowed in the current match status")
	ErrRatingsClosed      = errors.New("rating window is not open for this match")
	ErrVotingClosed       = errors.New("man of the match voting is not open for this match")
	ErrProposalNotPending = errors.New("opponent proposal has already been decided")

	// Вместимость и бюджет
	ErrSideFull             = errors.New("team side has no free roster slots")
	ErrRatingBudgetExceeded = errors.New("rating batch exceeds the allowed total budget")

	// Повторное действие
	ErrAlreadyInMatch         = errors.New("player already has a roster entry for this match")
	ErrAlreadyRated           = errors.New("captain already submitted ratings for this match")
	ErrAlreadyVoted           = errors.New("player already voted in this match")
	ErrProposalAlreadyPending = errors.New("team already has a pending proposal for this match")

	// Ошибки валидации
	ErrInvalidMatchType      = errors.New("invalid match type provided")
	ErrInvalidMatchFormat    = errors.New("invalid match format provided")
	ErrInvalidTeamSide       = errors.New("invalid team side provided")
	ErrInvalidProposalKind   = errors.New("invalid proposal kind provided")
	ErrInvalidJoinDecision   = errors.New("invalid join decision provided")
	ErrSideTeamMismatch      = errors.New("team does not play on that side of the match")
	ErrProposalOwnTeam       = errors.New("hosting team cannot be proposed as its own opponent")
	ErrInvalidScore          = errors.New(`score must be two non-negative integers in the form "X-Y"`)
	ErrInvalidRatingScore    = errors.New("rating score must be between 1 and 10")
	ErrEmptyRatingBatch      = errors.New("rating batch must not be empty")
	ErrDuplicateRatingTarget = errors.New("rating batch contains the same player twice")
	ErrSelfVote              = errors.New("players cannot vote for themselves")
)
