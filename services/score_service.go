package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/notify"
	"github.com/sundayleague/match-system/repositories"
)

const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0

	// A second disagreement is treated as irreconcilable: no tie-break is
	// attempted, since neither submission is more trustworthy.
	maxScoreConflicts = 2

	ratingsWindow = 24 * time.Hour
)

// ScoreOutcome is the discriminated result of one score submission.
type ScoreOutcome string

const (
	ScoreOutcomeWaiting    ScoreOutcome = "waiting"
	ScoreOutcomeConfirmed  ScoreOutcome = "confirmed"
	ScoreOutcomeConflict   ScoreOutcome = "conflict"
	ScoreOutcomeNullResult ScoreOutcome = "null_result"
)

// ScoreStatus is the read view of the consensus state. YourSubmission is
// only filled in for the captain asking about their own side.
type ScoreStatus struct {
	MatchStatus       models.MatchStatus `json:"match_status"`
	YourSubmission    *string            `json:"your_submission,omitempty"`
	OpponentSubmitted bool               `json:"opponent_submitted"`
	ConflictCount     int                `json:"conflict_count"`
	ScoreA            *int               `json:"score_a,omitempty"`
	ScoreB            *int               `json:"score_b,omitempty"`
}

type ScoreService interface {
	SubmitScore(ctx context.Context, matchID, captainID int, score string) (ScoreOutcome, error)
	GetScoreStatus(ctx context.Context, matchID, playerID int) (*ScoreStatus, error)
}

type scoreService struct {
	matchRepo  repositories.MatchRepository
	rosterRepo repositories.RosterRepository
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	tx         repositories.TxRunner
	locker     *MatchLocker
	notifier   notify.Notifier
	now        func() time.Time
}

func NewScoreService(
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	tx repositories.TxRunner,
	locker *MatchLocker,
	notifier notify.Notifier,
) ScoreService {
	return &scoreService{
		matchRepo:  matchRepo,
		rosterRepo: rosterRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		tx:         tx,
		locker:     locker,
		notifier:   notifier,
		now:        time.Now,
	}
}

// SubmitScore runs one step of the two-party consensus protocol. The whole
// read-both-submissions-decide-outcome section executes under the match lock
// and a single transaction, so concurrent submissions from both captains
// resolve exactly once.
func (s *scoreService) SubmitScore(ctx context.Context, matchID, captainID int, score string) (ScoreOutcome, error) {
	goalsA, goalsB, err := parseScore(score)
	if err != nil {
		return "", err
	}
	submitted := formatScore(goalsA, goalsB)

	unlock := s.locker.Lock(matchID)
	defer unlock()

	var outcome ScoreOutcome
	var events []notify.Event

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to lock match %d: %w", matchID, err)
		}
		if match.Status != models.MatchStatusConfirmed && match.Status != models.MatchStatusInProgress {
			return ErrInvalidMatchState
		}

		// teamBID is non-null for confirmed and in_progress matches.
		teamA, err := s.teamRepo.GetByID(ctx, match.TeamAID)
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", match.TeamAID, err)
		}
		teamB, err := s.teamRepo.GetByID(ctx, *match.TeamBID)
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", *match.TeamBID, err)
		}

		var side models.TeamSide
		switch {
		case isCaptainOf(captainID, teamA):
			side = models.SideA
		case isCaptainOf(captainID, teamB):
			side = models.SideB
		default:
			return ErrNotCaptain
		}

		var own, other **string
		var opposingCaptainID int
		if side == models.SideA {
			own, other = &match.ScoreSubmittedByA, &match.ScoreSubmittedByB
			opposingCaptainID = teamB.CaptainID
		} else {
			own, other = &match.ScoreSubmittedByB, &match.ScoreSubmittedByA
			opposingCaptainID = teamA.CaptainID
		}

		*own = strPtr(submitted)
		match.Status = models.MatchStatusInProgress

		if *other == nil {
			if err := s.matchRepo.Update(ctx, exec, match); err != nil {
				return fmt.Errorf("failed to store submission: %w", err)
			}
			outcome = ScoreOutcomeWaiting
			events = append(events, notify.Event{
				Type:     notify.EventScoreRequest,
				MatchID:  matchID,
				PlayerID: intPtr(opposingCaptainID),
			})
			return nil
		}

		if **other == submitted {
			return s.confirmResult(ctx, exec, match, teamA, teamB, goalsA, goalsB, &outcome, &events)
		}
		return s.recordConflict(ctx, exec, match, &outcome, &events)
	})
	if err != nil {
		return "", err
	}

	for _, event := range events {
		s.notifier.Publish(ctx, event)
	}
	return outcome, nil
}

// confirmResult finalizes an agreed score: fixes the result, opens the
// rating and MOTM windows, and awards points — all in the same transaction.
func (s *scoreService) confirmResult(
	ctx context.Context,
	exec repositories.SQLExecutor,
	match *models.Match,
	teamA, teamB *models.Team,
	goalsA, goalsB int,
	outcome *ScoreOutcome,
	events *[]notify.Event,
) error {
	match.ScoreA = intPtr(goalsA)
	match.ScoreB = intPtr(goalsB)
	match.ScoreSubmittedByA = nil
	match.ScoreSubmittedByB = nil
	match.Status = models.MatchStatusCompleted
	match.RatingsOpen = true
	match.MotmVotingOpen = true
	closeAt := s.now().Add(ratingsWindow)
	match.RatingsCloseAt = &closeAt

	if err := s.matchRepo.Update(ctx, exec, match); err != nil {
		return fmt.Errorf("failed to complete match %d: %w", match.ID, err)
	}

	if err := s.awardPoints(ctx, exec, match, teamA, teamB, goalsA, goalsB); err != nil {
		return err
	}

	*outcome = ScoreOutcomeConfirmed
	final := formatScore(goalsA, goalsB)
	*events = append(*events,
		notify.Event{Type: notify.EventScoreConfirmed, MatchID: match.ID, FinalScore: &final},
		notify.Event{Type: notify.EventRatingOpen, MatchID: match.ID},
	)
	return nil
}

func (s *scoreService) awardPoints(
	ctx context.Context,
	exec repositories.SQLExecutor,
	match *models.Match,
	teamA, teamB *models.Team,
	goalsA, goalsB int,
) error {
	pointsForA, pointsForB := pointsDraw, pointsDraw
	switch {
	case goalsA > goalsB:
		pointsForA, pointsForB = pointsWin, pointsLoss
		if err := s.teamRepo.AddWin(ctx, exec, teamA.ID); err != nil {
			return fmt.Errorf("failed to add win for team %d: %w", teamA.ID, err)
		}
	case goalsB > goalsA:
		pointsForA, pointsForB = pointsLoss, pointsWin
		if err := s.teamRepo.AddWin(ctx, exec, teamB.ID); err != nil {
			return fmt.Errorf("failed to add win for team %d: %w", teamB.ID, err)
		}
	}

	entries, err := s.rosterRepo.ListByMatch(ctx, exec, match.ID)
	if err != nil {
		return fmt.Errorf("failed to list roster for match %d: %w", match.ID, err)
	}
	for _, entry := range entries {
		if entry.JoinStatus != models.JoinStatusApproved {
			continue
		}
		points := pointsForA
		if entry.Side == models.SideB {
			points = pointsForB
		}
		if points == 0 {
			continue
		}
		if err := s.playerRepo.AddPoints(ctx, exec, entry.PlayerID, points); err != nil {
			return fmt.Errorf("failed to award points to player %d: %w", entry.PlayerID, err)
		}
	}
	return nil
}

// recordConflict handles disagreeing submissions: one resubmission round is
// allowed, the second disagreement ends the match as null_result with no
// points awarded.
func (s *scoreService) recordConflict(
	ctx context.Context,
	exec repositories.SQLExecutor,
	match *models.Match,
	outcome *ScoreOutcome,
	events *[]notify.Event,
) error {
	submittedA := match.ScoreSubmittedByA
	submittedB := match.ScoreSubmittedByB

	match.ScoreConflictCount++
	match.ScoreSubmittedByA = nil
	match.ScoreSubmittedByB = nil

	if match.ScoreConflictCount < maxScoreConflicts {
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to record conflict on match %d: %w", match.ID, err)
		}
		*outcome = ScoreOutcomeConflict
		*events = append(*events, notify.Event{
			Type:       notify.EventScoreConflict,
			MatchID:    match.ID,
			SubmittedA: submittedA,
			SubmittedB: submittedB,
		})
		return nil
	}

	match.Status = models.MatchStatusNullResult
	match.RatingsOpen = false
	match.MotmVotingOpen = false
	if err := s.matchRepo.Update(ctx, exec, match); err != nil {
		return fmt.Errorf("failed to null match %d: %w", match.ID, err)
	}
	*outcome = ScoreOutcomeNullResult
	*events = append(*events, notify.Event{Type: notify.EventScoreNull, MatchID: match.ID})
	return nil
}

func (s *scoreService) GetScoreStatus(ctx context.Context, matchID, playerID int) (*ScoreStatus, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	status := &ScoreStatus{
		MatchStatus:   match.Status,
		ConflictCount: match.ScoreConflictCount,
		ScoreA:        match.ScoreA,
		ScoreB:        match.ScoreB,
	}

	teamA, err := s.teamRepo.GetByID(ctx, match.TeamAID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", match.TeamAID, err)
	}
	var teamB *models.Team
	if match.TeamBID != nil {
		teamB, err = s.teamRepo.GetByID(ctx, *match.TeamBID)
		if err != nil {
			return nil, fmt.Errorf("failed to get team %d: %w", *match.TeamBID, err)
		}
	}

	switch {
	case isCaptainOf(playerID, teamA):
		status.YourSubmission = match.ScoreSubmittedByA
		status.OpponentSubmitted = match.ScoreSubmittedByB != nil
	case isCaptainOf(playerID, teamB):
		status.YourSubmission = match.ScoreSubmittedByB
		status.OpponentSubmitted = match.ScoreSubmittedByA != nil
	default:
		// Non-captains see the public state only.
		status.OpponentSubmitted = match.ScoreSubmittedByA != nil || match.ScoreSubmittedByB != nil
	}
	return status, nil
}
