package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/notify"
)

const (
	teamAlphaID       = 10
	teamBetaID        = 20
	captainAlphaID    = 100
	captainBetaID     = 200
	alphaMidfielder   = 101
	betaStriker       = 201
	unrelatedPlayerID = 999
)

var scoreTestNow = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

type scoreFixture struct {
	svc      *scoreService
	matches  *fakeMatchRepo
	roster   *fakeRosterRepo
	teams    *fakeTeamRepo
	players  *fakePlayerRepo
	notifier *fakeNotifier
	match    *models.Match
}

func newScoreFixture(t *testing.T) *scoreFixture {
	t.Helper()

	matches := newFakeMatchRepo()
	roster := &fakeRosterRepo{}
	teams := newFakeTeamRepo(
		&models.Team{ID: teamAlphaID, Name: "Alpha", CaptainID: captainAlphaID},
		&models.Team{ID: teamBetaID, Name: "Beta", CaptainID: captainBetaID},
	)
	players := newFakePlayerRepo()
	notifier := &fakeNotifier{}

	betaID := teamBetaID
	match := matches.put(&models.Match{
		Type:    models.MatchTypePublic,
		Status:  models.MatchStatusConfirmed,
		Format:  models.MatchFormat5v5,
		TeamAID: teamAlphaID,
		TeamBID: &betaID,
	})

	roster.add(match.ID, captainAlphaID, teamAlphaID, models.SideA, models.JoinStatusApproved)
	roster.add(match.ID, alphaMidfielder, teamAlphaID, models.SideA, models.JoinStatusApproved)
	roster.add(match.ID, captainBetaID, teamBetaID, models.SideB, models.JoinStatusApproved)
	roster.add(match.ID, betaStriker, teamBetaID, models.SideB, models.JoinStatusApproved)

	svc := &scoreService{
		matchRepo:  matches,
		rosterRepo: roster,
		teamRepo:   teams,
		playerRepo: players,
		tx:         fakeTxRunner{},
		locker:     NewMatchLocker(),
		notifier:   notifier,
		now:        func() time.Time { return scoreTestNow },
	}
	return &scoreFixture{svc: svc, matches: matches, roster: roster, teams: teams, players: players, notifier: notifier, match: match}
}

func TestSubmitScoreFirstSubmissionWaits(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	outcome, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "3-1")
	if err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	if outcome != ScoreOutcomeWaiting {
		t.Fatalf("outcome = %q, want %q", outcome, ScoreOutcomeWaiting)
	}

	match, _ := f.matches.GetByID(ctx, f.match.ID)
	if match.Status != models.MatchStatusInProgress {
		t.Errorf("status = %q, want in_progress", match.Status)
	}
	if match.ScoreSubmittedByA == nil || *match.ScoreSubmittedByA != "3-1" {
		t.Errorf("ScoreSubmittedByA = %v, want 3-1", match.ScoreSubmittedByA)
	}

	requests := f.notifier.byType(notify.EventScoreRequest)
	if len(requests) != 1 {
		t.Fatalf("score_request events = %d, want 1", len(requests))
	}
	if requests[0].PlayerID == nil || *requests[0].PlayerID != captainBetaID {
		t.Errorf("score_request addressed to %v, want opposing captain %d", requests[0].PlayerID, captainBetaID)
	}
}

func TestSubmitScoreAgreementCompletesMatch(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "3-1"); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	// Different rendering of the same score must still agree.
	outcome, err := f.svc.SubmitScore(ctx, f.match.ID, captainBetaID, "03-1")
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}
	if outcome != ScoreOutcomeConfirmed {
		t.Fatalf("outcome = %q, want confirmed", outcome)
	}

	match, _ := f.matches.GetByID(ctx, f.match.ID)
	if match.Status != models.MatchStatusCompleted {
		t.Errorf("status = %q, want completed", match.Status)
	}
	if match.ScoreA == nil || match.ScoreB == nil || *match.ScoreA != 3 || *match.ScoreB != 1 {
		t.Errorf("final score = %v-%v, want 3-1", match.ScoreA, match.ScoreB)
	}
	if match.ScoreSubmittedByA != nil || match.ScoreSubmittedByB != nil {
		t.Error("transient submissions should be cleared after confirmation")
	}
	if !match.RatingsOpen || !match.MotmVotingOpen {
		t.Error("rating and voting windows should open on completion")
	}
	if match.RatingsCloseAt == nil || !match.RatingsCloseAt.Equal(scoreTestNow.Add(24*time.Hour)) {
		t.Errorf("RatingsCloseAt = %v, want now+24h", match.RatingsCloseAt)
	}

	winner, _ := f.teams.GetByID(ctx, teamAlphaID)
	if winner.Wins != 1 {
		t.Errorf("winning team wins = %d, want 1", winner.Wins)
	}
	for _, playerID := range []int{captainAlphaID, alphaMidfielder} {
		if got := f.players.points[playerID]; got != pointsWin {
			t.Errorf("player %d points = %d, want %d", playerID, got, pointsWin)
		}
	}
	for _, playerID := range []int{captainBetaID, betaStriker} {
		if got := f.players.points[playerID]; got != pointsLoss {
			t.Errorf("player %d points = %d, want %d", playerID, got, pointsLoss)
		}
	}

	confirmed := f.notifier.byType(notify.EventScoreConfirmed)
	if len(confirmed) != 1 || confirmed[0].FinalScore == nil || *confirmed[0].FinalScore != "3-1" {
		t.Errorf("score_confirmed events = %+v, want one with final score 3-1", confirmed)
	}
	if len(f.notifier.byType(notify.EventRatingOpen)) != 1 {
		t.Error("expected one rating_open event")
	}
}

func TestSubmitScoreSubmissionOrderIrrelevant(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	// Side B submits first this time.
	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainBetaID, "3-3"); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	outcome, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "3-3")
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}
	if outcome != ScoreOutcomeConfirmed {
		t.Fatalf("outcome = %q, want confirmed", outcome)
	}

	match, _ := f.matches.GetByID(ctx, f.match.ID)
	if match.ScoreA == nil || match.ScoreB == nil || *match.ScoreA != 3 || *match.ScoreB != 3 {
		t.Errorf("final score = %v-%v, want 3-3", match.ScoreA, match.ScoreB)
	}
}

func TestSubmitScoreDrawAwardsBothSides(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "2-2"); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainBetaID, "2-2"); err != nil {
		t.Fatalf("second submission: %v", err)
	}

	for _, playerID := range []int{captainAlphaID, alphaMidfielder, captainBetaID, betaStriker} {
		if got := f.players.points[playerID]; got != pointsDraw {
			t.Errorf("player %d points = %d, want %d", playerID, got, pointsDraw)
		}
	}
	for _, teamID := range []int{teamAlphaID, teamBetaID} {
		team, _ := f.teams.GetByID(ctx, teamID)
		if team.Wins != 0 {
			t.Errorf("team %d wins = %d, want 0 on a draw", teamID, team.Wins)
		}
	}
}

func TestSubmitScoreConflictAllowsOneRetry(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "3-1"); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	outcome, err := f.svc.SubmitScore(ctx, f.match.ID, captainBetaID, "2-1")
	if err != nil {
		t.Fatalf("conflicting submission: %v", err)
	}
	if outcome != ScoreOutcomeConflict {
		t.Fatalf("outcome = %q, want conflict", outcome)
	}

	match, _ := f.matches.GetByID(ctx, f.match.ID)
	if match.ScoreConflictCount != 1 {
		t.Errorf("conflict count = %d, want 1", match.ScoreConflictCount)
	}
	if match.ScoreSubmittedByA != nil || match.ScoreSubmittedByB != nil {
		t.Error("both submissions should be cleared for the retry round")
	}

	conflicts := f.notifier.byType(notify.EventScoreConflict)
	if len(conflicts) != 1 {
		t.Fatalf("score_conflict events = %d, want 1", len(conflicts))
	}
	if conflicts[0].SubmittedA == nil || *conflicts[0].SubmittedA != "3-1" ||
		conflicts[0].SubmittedB == nil || *conflicts[0].SubmittedB != "2-1" {
		t.Errorf("conflict event payload = %+v, want both disputed submissions", conflicts[0])
	}

	// The retry round can still converge.
	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "2-1"); err != nil {
		t.Fatalf("retry A: %v", err)
	}
	outcome, err = f.svc.SubmitScore(ctx, f.match.ID, captainBetaID, "2-1")
	if err != nil {
		t.Fatalf("retry B: %v", err)
	}
	if outcome != ScoreOutcomeConfirmed {
		t.Errorf("retry outcome = %q, want confirmed", outcome)
	}
}

func TestSubmitScoreSecondConflictNullsMatch(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	submit := func(captainID int, score string) ScoreOutcome {
		t.Helper()
		outcome, err := f.svc.SubmitScore(ctx, f.match.ID, captainID, score)
		if err != nil {
			t.Fatalf("SubmitScore(%d, %q): %v", captainID, score, err)
		}
		return outcome
	}

	submit(captainAlphaID, "3-1")
	submit(captainBetaID, "2-1")
	submit(captainAlphaID, "3-1")
	if outcome := submit(captainBetaID, "2-2"); outcome != ScoreOutcomeNullResult {
		t.Fatalf("outcome = %q, want null_result", outcome)
	}

	match, _ := f.matches.GetByID(ctx, f.match.ID)
	if match.Status != models.MatchStatusNullResult {
		t.Errorf("status = %q, want null_result", match.Status)
	}
	if match.ScoreConflictCount != maxScoreConflicts {
		t.Errorf("conflict count = %d, want %d", match.ScoreConflictCount, maxScoreConflicts)
	}
	if match.RatingsOpen || match.MotmVotingOpen {
		t.Error("nulled matches must not open rating or voting windows")
	}
	if match.ScoreA != nil || match.ScoreB != nil {
		t.Error("nulled matches must not record a final score")
	}

	for playerID, points := range f.players.points {
		if points != 0 {
			t.Errorf("player %d received %d points from a nulled match", playerID, points)
		}
	}
	if len(f.notifier.byType(notify.EventScoreNull)) != 1 {
		t.Error("expected one score_null event")
	}
}

func TestSubmitScoreRejections(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		captainID int
		score     string
		wantErr   error
	}{
		{"invalid score", captainAlphaID, "3:1", ErrInvalidScore},
		{"not a captain", alphaMidfielder, "3-1", ErrNotCaptain},
		{"unknown player", unrelatedPlayerID, "3-1", ErrNotCaptain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.SubmitScore(ctx, f.match.ID, tt.captainID, tt.score); !errors.Is(err, tt.wantErr) {
				t.Errorf("got err %v, want %v", err, tt.wantErr)
			}
		})
	}

	f.match.Status = models.MatchStatusPending
	f.match.TeamBID = nil
	f.matches.put(f.match)
	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "3-1"); !errors.Is(err, ErrInvalidMatchState) {
		t.Errorf("pending match: got err %v, want ErrInvalidMatchState", err)
	}

	if _, err := f.svc.SubmitScore(ctx, 4242, captainAlphaID, "3-1"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("missing match: got err %v, want ErrMatchNotFound", err)
	}
}

func TestGetScoreStatusHidesOpponentSubmission(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SubmitScore(ctx, f.match.ID, captainAlphaID, "3-1"); err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}

	own, err := f.svc.GetScoreStatus(ctx, f.match.ID, captainAlphaID)
	if err != nil {
		t.Fatalf("GetScoreStatus(A): %v", err)
	}
	if own.YourSubmission == nil || *own.YourSubmission != "3-1" {
		t.Errorf("captain A should see their own submission, got %v", own.YourSubmission)
	}
	if own.OpponentSubmitted {
		t.Error("captain A should not see an opponent submission yet")
	}

	other, err := f.svc.GetScoreStatus(ctx, f.match.ID, captainBetaID)
	if err != nil {
		t.Fatalf("GetScoreStatus(B): %v", err)
	}
	if other.YourSubmission != nil {
		t.Errorf("captain B has not submitted, got %v", other.YourSubmission)
	}
	if !other.OpponentSubmitted {
		t.Error("captain B should see that the opponent has submitted")
	}
}
