package services

import (
	"context"
	"sync"
	"time"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/notify"
	"github.com/sundayleague/match-system/repositories"
)

// The service tests run against in-memory repository fakes. The fakes keep
// the same duplicate-detection semantics the postgres implementations derive
// from unique constraints, so the services see the same error surface.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *fakeNotifier) Publish(_ context.Context, event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) byType(t notify.EventType) []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Event
	for _, e := range n.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) put(m *models.Match) *models.Match {
	if m.ID == 0 {
		r.nextID++
		m.ID = r.nextID
	} else if m.ID > r.nextID {
		r.nextID = m.ID
	}
	c := *m
	r.matches[c.ID] = &c
	return &c
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.nextID++
	match.ID = r.nextID
	c := *match
	r.matches[c.ID] = &c
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	c := *match
	r.matches[c.ID] = &c
	return nil
}

func (r *fakeMatchRepo) CancelStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, m := range r.matches {
		if m.Status == models.MatchStatusPending && m.CreatedAt.Before(cutoff) {
			m.Status = models.MatchStatusCancelled
			n++
		}
	}
	return n, nil
}

func (r *fakeMatchRepo) CloseExpiredRatingWindows(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, m := range r.matches {
		if m.RatingsOpen && m.RatingsCloseAt != nil && m.RatingsCloseAt.Before(now) {
			m.RatingsOpen = false
			n++
		}
	}
	return n, nil
}

type fakeRosterRepo struct {
	nextID  int
	entries []*models.RosterEntry
}

func (r *fakeRosterRepo) add(matchID, playerID, teamID int, side models.TeamSide, status models.JoinStatus) *models.RosterEntry {
	r.nextID++
	entry := &models.RosterEntry{
		ID:         r.nextID,
		MatchID:    matchID,
		PlayerID:   playerID,
		TeamID:     teamID,
		Side:       side,
		JoinStatus: status,
	}
	r.entries = append(r.entries, entry)
	return entry
}

func (r *fakeRosterRepo) Create(_ context.Context, _ repositories.SQLExecutor, entry *models.RosterEntry) error {
	for _, e := range r.entries {
		if e.MatchID == entry.MatchID && e.PlayerID == entry.PlayerID {
			return repositories.ErrRosterDuplicateEntry
		}
	}
	r.nextID++
	entry.ID = r.nextID
	c := *entry
	r.entries = append(r.entries, &c)
	return nil
}

func (r *fakeRosterRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.RosterEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, repositories.ErrRosterEntryNotFound
}

func (r *fakeRosterRepo) GetByMatchAndPlayer(_ context.Context, matchID, playerID int) (*models.RosterEntry, error) {
	for _, e := range r.entries {
		if e.MatchID == matchID && e.PlayerID == playerID {
			c := *e
			return &c, nil
		}
	}
	return nil, repositories.ErrRosterEntryNotFound
}

func (r *fakeRosterRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.RosterEntry, error) {
	var out []*models.RosterEntry
	for _, e := range r.entries {
		if e.MatchID == matchID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeRosterRepo) CountApproved(_ context.Context, _ repositories.SQLExecutor, matchID int, side models.TeamSide) (int, error) {
	count := 0
	for _, e := range r.entries {
		if e.MatchID == matchID && e.Side == side && e.JoinStatus == models.JoinStatusApproved {
			count++
		}
	}
	return count, nil
}

func (r *fakeRosterRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.JoinStatus) error {
	for _, e := range r.entries {
		if e.ID == id {
			e.JoinStatus = status
			return nil
		}
	}
	return repositories.ErrRosterEntryNotFound
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, t := range teams {
		c := *t
		r.teams[c.ID] = &c
	}
	return r
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTeamRepo) AddWin(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Wins++
	return nil
}

type fakePlayerRepo struct {
	points      map[int]int
	ratingSums  map[int]int
	ratingCount map[int]int
	motmCounts  map[int]int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		points:      make(map[int]int),
		ratingSums:  make(map[int]int),
		ratingCount: make(map[int]int),
		motmCounts:  make(map[int]int),
	}
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	return &models.Player{
		ID:           id,
		TotalPoints:  r.points[id],
		TotalRatings: r.ratingSums[id],
		RatingCount:  r.ratingCount[id],
		MotmCount:    r.motmCounts[id],
	}, nil
}

func (r *fakePlayerRepo) AddPoints(_ context.Context, _ repositories.SQLExecutor, playerID, delta int) error {
	r.points[playerID] += delta
	return nil
}

func (r *fakePlayerRepo) ApplyRatingDelta(_ context.Context, _ repositories.SQLExecutor, playerID, scoreSum, count int) error {
	r.ratingSums[playerID] += scoreSum
	r.ratingCount[playerID] += count
	return nil
}

func (r *fakePlayerRepo) IncrementMotmCount(_ context.Context, _ repositories.SQLExecutor, playerID int) error {
	r.motmCounts[playerID]++
	return nil
}

type fakeRatingRepo struct {
	nextID  int
	ratings []*models.Rating
}

func (r *fakeRatingRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, ratings []*models.Rating) error {
	for _, rating := range ratings {
		for _, existing := range r.ratings {
			if existing.MatchID == rating.MatchID &&
				existing.RaterID == rating.RaterID &&
				existing.RatedPlayerID == rating.RatedPlayerID {
				return repositories.ErrRatingDuplicate
			}
		}
	}
	for _, rating := range ratings {
		r.nextID++
		rating.ID = r.nextID
		c := *rating
		r.ratings = append(r.ratings, &c)
	}
	return nil
}

func (r *fakeRatingRepo) ListByMatch(_ context.Context, matchID int) ([]*models.Rating, error) {
	var out []*models.Rating
	for _, rating := range r.ratings {
		if rating.MatchID == matchID {
			c := *rating
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) ExistsForRater(_ context.Context, _ repositories.SQLExecutor, matchID, raterID int) (bool, error) {
	for _, rating := range r.ratings {
		if rating.MatchID == matchID && rating.RaterID == raterID {
			return true, nil
		}
	}
	return false, nil
}

type fakeVoteRepo struct {
	nextID int
	votes  []*models.MotmVote
}

func (r *fakeVoteRepo) Create(_ context.Context, _ repositories.SQLExecutor, vote *models.MotmVote) error {
	for _, v := range r.votes {
		if v.MatchID == vote.MatchID && v.VoterID == vote.VoterID {
			return repositories.ErrVoteDuplicate
		}
	}
	r.nextID++
	vote.ID = r.nextID
	c := *vote
	r.votes = append(r.votes, &c)
	return nil
}

func (r *fakeVoteRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.MotmVote, error) {
	var out []*models.MotmVote
	for _, v := range r.votes {
		if v.MatchID == matchID {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeVoteRepo) ExistsForVoter(_ context.Context, _ repositories.SQLExecutor, matchID, voterID int) (bool, error) {
	for _, v := range r.votes {
		if v.MatchID == matchID && v.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

type fakeProposalRepo struct {
	nextID    int
	proposals []*models.OpponentProposal
}

func (r *fakeProposalRepo) Create(_ context.Context, proposal *models.OpponentProposal) error {
	for _, p := range r.proposals {
		if p.MatchID == proposal.MatchID && p.TeamID == proposal.TeamID && p.Status == models.ProposalStatusPending {
			return repositories.ErrProposalDuplicatePending
		}
	}
	r.nextID++
	proposal.ID = r.nextID
	c := *proposal
	r.proposals = append(r.proposals, &c)
	return nil
}

func (r *fakeProposalRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.OpponentProposal, error) {
	for _, p := range r.proposals {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrProposalNotFound
}

func (r *fakeProposalRepo) ListByMatch(_ context.Context, matchID int) ([]*models.OpponentProposal, error) {
	var out []*models.OpponentProposal
	for _, p := range r.proposals {
		if p.MatchID == matchID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) HasPendingForTeam(_ context.Context, matchID, teamID int) (bool, error) {
	for _, p := range r.proposals {
		if p.MatchID == matchID && p.TeamID == teamID && p.Status == models.ProposalStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProposalRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.ProposalStatus) error {
	for _, p := range r.proposals {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return repositories.ErrProposalNotFound
}

func (r *fakeProposalRepo) RejectPendingExcept(_ context.Context, _ repositories.SQLExecutor, matchID, exceptID int) (int64, error) {
	var n int64
	for _, p := range r.proposals {
		if p.MatchID == matchID && p.ID != exceptID && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusRejected
			n++
		}
	}
	return n, nil
}
