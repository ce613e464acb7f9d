package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/notify"
	"github.com/sundayleague/match-system/repositories"
)

// motmBonusPoints is awarded to the man of the match on top of match points.
const motmBonusPoints = 2

type VoteResult struct {
	Finalized bool `json:"finalized"`
	WinnerID  *int `json:"winner_id,omitempty"`
	VotesCast int  `json:"votes_cast"`
	Eligible  int  `json:"eligible"`
}

type CandidateVotes struct {
	PlayerID int `json:"player_id"`
	Votes    int `json:"votes"`
}

type MotmResults struct {
	Candidates []CandidateVotes `json:"candidates"`
	VotesCast  int              `json:"votes_cast"`
	Eligible   int              `json:"eligible"`
	WinnerID   *int             `json:"winner_id,omitempty"`
	VotingOpen bool             `json:"voting_open"`
}

type MotmService interface {
	Vote(ctx context.Context, matchID, voterID, votedPlayerID int) (*VoteResult, error)
	GetResults(ctx context.Context, matchID int) (*MotmResults, error)
}

type motmService struct {
	matchRepo  repositories.MatchRepository
	rosterRepo repositories.RosterRepository
	playerRepo repositories.PlayerRepository
	voteRepo   repositories.VoteRepository
	tx         repositories.TxRunner
	locker     *MatchLocker
	notifier   notify.Notifier
}

func NewMotmService(
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	playerRepo repositories.PlayerRepository,
	voteRepo repositories.VoteRepository,
	tx repositories.TxRunner,
	locker *MatchLocker,
	notifier notify.Notifier,
) MotmService {
	return &motmService{
		matchRepo:  matchRepo,
		rosterRepo: rosterRepo,
		playerRepo: playerRepo,
		voteRepo:   voteRepo,
		tx:         tx,
		locker:     locker,
		notifier:   notifier,
	}
}

// Vote records one man-of-the-match vote and finalizes the election once
// every eligible player has voted. The quorum check and finalization run
// under the match lock so the election is decided exactly once.
func (s *motmService) Vote(ctx context.Context, matchID, voterID, votedPlayerID int) (*VoteResult, error) {
	if voterID == votedPlayerID {
		return nil, ErrSelfVote
	}

	unlock := s.locker.Lock(matchID)
	defer unlock()

	result := &VoteResult{}
	var events []notify.Event

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to lock match %d: %w", matchID, err)
		}
		if !match.MotmVotingOpen {
			return ErrVotingClosed
		}

		entries, err := s.rosterRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return fmt.Errorf("failed to list roster for match %d: %w", matchID, err)
		}
		eligible := make(map[int]bool)
		for _, entry := range entries {
			if entry.JoinStatus == models.JoinStatusApproved {
				eligible[entry.PlayerID] = true
			}
		}
		if !eligible[voterID] || !eligible[votedPlayerID] {
			return ErrNotRosterMember
		}

		voted, err := s.voteRepo.ExistsForVoter(ctx, exec, matchID, voterID)
		if err != nil {
			return fmt.Errorf("failed to check existing vote: %w", err)
		}
		if voted {
			return ErrAlreadyVoted
		}

		vote := &models.MotmVote{
			MatchID:       matchID,
			VoterID:       voterID,
			VotedPlayerID: votedPlayerID,
		}
		if err := s.voteRepo.Create(ctx, exec, vote); err != nil {
			if errors.Is(err, repositories.ErrVoteDuplicate) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		votes, err := s.voteRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return fmt.Errorf("failed to list votes for match %d: %w", matchID, err)
		}

		result.VotesCast = len(votes)
		result.Eligible = len(eligible)
		if result.VotesCast < result.Eligible {
			return nil
		}

		winnerID := tallyWinner(votes)
		if err := s.playerRepo.IncrementMotmCount(ctx, exec, winnerID); err != nil {
			return fmt.Errorf("failed to increment motm count for player %d: %w", winnerID, err)
		}
		if err := s.playerRepo.AddPoints(ctx, exec, winnerID, motmBonusPoints); err != nil {
			return fmt.Errorf("failed to award bonus points to player %d: %w", winnerID, err)
		}

		match.MotmVotingOpen = false
		match.MotmWinnerID = &winnerID
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to close voting on match %d: %w", matchID, err)
		}

		result.Finalized = true
		result.WinnerID = &winnerID
		events = append(events, notify.Event{
			Type:     notify.EventMotmWinner,
			MatchID:  matchID,
			PlayerID: &winnerID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		s.notifier.Publish(ctx, event)
	}
	return result, nil
}

// tallyWinner picks the first candidate to reach the maximal vote count in
// vote insertion order. Ties therefore resolve deterministically toward the
// candidate whose top count was reached earliest.
func tallyWinner(votes []*models.MotmVote) int {
	counts := make(map[int]int)
	winnerID, best := 0, 0
	for _, vote := range votes {
		counts[vote.VotedPlayerID]++
		if counts[vote.VotedPlayerID] > best {
			best = counts[vote.VotedPlayerID]
			winnerID = vote.VotedPlayerID
		}
	}
	return winnerID
}

func (s *motmService) GetResults(ctx context.Context, matchID int) (*MotmResults, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	votes, err := s.voteRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes for match %d: %w", matchID, err)
	}

	entries, err := s.rosterRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for match %d: %w", matchID, err)
	}
	eligible := 0
	for _, entry := range entries {
		if entry.JoinStatus == models.JoinStatusApproved {
			eligible++
		}
	}

	counts := make(map[int]int)
	order := make([]int, 0)
	for _, vote := range votes {
		if counts[vote.VotedPlayerID] == 0 {
			order = append(order, vote.VotedPlayerID)
		}
		counts[vote.VotedPlayerID]++
	}
	candidates := make([]CandidateVotes, 0, len(order))
	for _, playerID := range order {
		candidates = append(candidates, CandidateVotes{PlayerID: playerID, Votes: counts[playerID]})
	}

	return &MotmResults{
		Candidates: candidates,
		VotesCast:  len(votes),
		Eligible:   eligible,
		WinnerID:   match.MotmWinnerID,
		VotingOpen: match.MotmVotingOpen,
	}, nil
}
