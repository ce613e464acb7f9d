package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/repositories"
)

const (
	minRatingScore = 1
	maxRatingScore = 10

	// The anti-cheat budget: a captain can hand out at most an average of
	// 7/10 across the full opposing roster, so inflating one player means
	// starving the rest.
	ratingBudgetPerOpponent = 7

	// With at least this many ratings the single highest and single lowest
	// are dropped before averaging.
	ratingTrimThreshold = 5
)

type RatingInput struct {
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
}

type PlayerRatingResult struct {
	PlayerID int     `json:"player_id"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

type RatingService interface {
	SubmitRatings(ctx context.Context, matchID, raterID int, batch []RatingInput) error
	GetResults(ctx context.Context, matchID int) ([]PlayerRatingResult, error)
}

type ratingService struct {
	matchRepo  repositories.MatchRepository
	rosterRepo repositories.RosterRepository
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	ratingRepo repositories.RatingRepository
	tx         repositories.TxRunner
	locker     *MatchLocker
	now        func() time.Time
}

func NewRatingService(
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	ratingRepo repositories.RatingRepository,
	tx repositories.TxRunner,
	locker *MatchLocker,
) RatingService {
	return &ratingService{
		matchRepo:  matchRepo,
		rosterRepo: rosterRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		ratingRepo: ratingRepo,
		tx:         tx,
		locker:     locker,
		now:        time.Now,
	}
}

// SubmitRatings accepts a captain's single post-match batch covering
// opposing-side players. The batch is validated as a whole and inserted
// together with the per-player counter deltas in one transaction.
func (s *ratingService) SubmitRatings(ctx context.Context, matchID, raterID int, batch []RatingInput) error {
	if len(batch) == 0 {
		return ErrEmptyRatingBatch
	}

	unlock := s.locker.Lock(matchID)
	defer unlock()

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to lock match %d: %w", matchID, err)
		}
		if !match.RatingsOpen {
			return ErrRatingsClosed
		}
		if match.RatingsCloseAt != nil && s.now().After(*match.RatingsCloseAt) {
			return ErrRatingsClosed
		}

		teamA, err := s.teamRepo.GetByID(ctx, match.TeamAID)
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", match.TeamAID, err)
		}
		teamB, err := s.teamRepo.GetByID(ctx, *match.TeamBID)
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", *match.TeamBID, err)
		}

		var raterSide models.TeamSide
		switch {
		case isCaptainOf(raterID, teamA):
			raterSide = models.SideA
		case isCaptainOf(raterID, teamB):
			raterSide = models.SideB
		default:
			return ErrNotCaptain
		}

		exists, err := s.ratingRepo.ExistsForRater(ctx, exec, matchID, raterID)
		if err != nil {
			return fmt.Errorf("failed to check existing ratings: %w", err)
		}
		if exists {
			return ErrAlreadyRated
		}

		entries, err := s.rosterRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return fmt.Errorf("failed to list roster for match %d: %w", matchID, err)
		}
		// Captains are auto-seated approved at creation/acceptance, but the
		// seat can be revoked; rater eligibility is checked against the rows.
		opponents := make(map[int]bool)
		raterSeated := false
		for _, entry := range entries {
			if entry.JoinStatus != models.JoinStatusApproved {
				continue
			}
			if entry.PlayerID == raterID {
				raterSeated = true
			}
			if entry.Side == raterSide.Opposite() {
				opponents[entry.PlayerID] = true
			}
		}
		if !raterSeated {
			return ErrNotRosterMember
		}

		sum := 0
		seen := make(map[int]bool, len(batch))
		ratings := make([]*models.Rating, 0, len(batch))
		for _, input := range batch {
			if input.Score < minRatingScore || input.Score > maxRatingScore {
				return ErrInvalidRatingScore
			}
			if seen[input.PlayerID] {
				return ErrDuplicateRatingTarget
			}
			seen[input.PlayerID] = true
			if !opponents[input.PlayerID] {
				return ErrWrongSideTarget
			}
			sum += input.Score
			ratings = append(ratings, &models.Rating{
				MatchID:       matchID,
				RaterID:       raterID,
				RatedPlayerID: input.PlayerID,
				Score:         input.Score,
			})
		}

		if sum > len(opponents)*ratingBudgetPerOpponent {
			return ErrRatingBudgetExceeded
		}

		if err := s.ratingRepo.CreateBatch(ctx, exec, ratings); err != nil {
			if errors.Is(err, repositories.ErrRatingDuplicate) {
				return ErrAlreadyRated
			}
			return fmt.Errorf("failed to insert rating batch: %w", err)
		}
		for _, rating := range ratings {
			if err := s.playerRepo.ApplyRatingDelta(ctx, exec, rating.RatedPlayerID, rating.Score, 1); err != nil {
				return fmt.Errorf("failed to apply rating delta to player %d: %w", rating.RatedPlayerID, err)
			}
		}
		return nil
	})
}

// GetResults aggregates all ratings of the match for public display, with
// the outlier trim applied per rated player.
func (s *ratingService) GetResults(ctx context.Context, matchID int) ([]PlayerRatingResult, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	ratings, err := s.ratingRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for match %d: %w", matchID, err)
	}

	scoresByPlayer := make(map[int][]int)
	for _, rating := range ratings {
		scoresByPlayer[rating.RatedPlayerID] = append(scoresByPlayer[rating.RatedPlayerID], rating.Score)
	}

	results := make([]PlayerRatingResult, 0, len(scoresByPlayer))
	for playerID, scores := range scoresByPlayer {
		results = append(results, PlayerRatingResult{
			PlayerID: playerID,
			Average:  trimmedAverage(scores),
			Count:    len(scores),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Average != results[j].Average {
			return results[i].Average > results[j].Average
		}
		return results[i].PlayerID < results[j].PlayerID
	})
	return results, nil
}

// trimmedAverage drops the single highest and single lowest score once the
// sample is large enough, to blunt outlier and grudge ratings. Rounded to
// one decimal.
func trimmedAverage(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}

	sum, lowest, highest := 0, scores[0], scores[0]
	for _, score := range scores {
		sum += score
		if score < lowest {
			lowest = score
		}
		if score > highest {
			highest = score
		}
	}

	count := len(scores)
	if count >= ratingTrimThreshold {
		sum -= lowest + highest
		count -= 2
	}

	return math.Round(float64(sum)/float64(count)*10) / 10
}
