package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/notify"
	"github.com/sundayleague/match-system/repositories"
)

type JoinDecision string

const (
	DecisionApprove JoinDecision = "approve"
	DecisionDecline JoinDecision = "decline"
)

func (d JoinDecision) Valid() bool {
	return d == DecisionApprove || d == DecisionDecline
}

type RosterService interface {
	RequestJoin(ctx context.Context, matchID, playerID, teamID int, side models.TeamSide) (*models.RosterEntry, error)
	DecideJoin(ctx context.Context, matchID, entryID, captainID int, decision JoinDecision) error
	ListRoster(ctx context.Context, matchID int) ([]*models.RosterEntry, error)
}

type rosterService struct {
	matchRepo  repositories.MatchRepository
	rosterRepo repositories.RosterRepository
	teamRepo   repositories.TeamRepository
	tx         repositories.TxRunner
	locker     *MatchLocker
	notifier   notify.Notifier
}

func NewRosterService(
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
	tx repositories.TxRunner,
	locker *MatchLocker,
	notifier notify.Notifier,
) RosterService {
	return &rosterService{
		matchRepo:  matchRepo,
		rosterRepo: rosterRepo,
		teamRepo:   teamRepo,
		tx:         tx,
		locker:     locker,
		notifier:   notifier,
	}
}

// RequestJoin inserts a pending roster entry for the player and notifies the
// side's captain. Capacity is checked against the projection of approved
// rows, under the match lock.
func (s *rosterService) RequestJoin(ctx context.Context, matchID, playerID, teamID int, side models.TeamSide) (*models.RosterEntry, error) {
	if !side.Valid() {
		return nil, ErrInvalidTeamSide
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.Status.Terminal() {
		return nil, ErrInvalidMatchState
	}

	// The requested side must actually be played by the requested team.
	switch side {
	case models.SideA:
		if teamID != match.TeamAID {
			return nil, ErrSideTeamMismatch
		}
	case models.SideB:
		if match.TeamBID == nil {
			return nil, ErrInvalidMatchState
		}
		if teamID != *match.TeamBID {
			return nil, ErrSideTeamMismatch
		}
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if isCaptainOf(playerID, team) {
		return nil, ErrCaptainAlreadyMember
	}

	if _, err := s.rosterRepo.GetByMatchAndPlayer(ctx, matchID, playerID); err == nil {
		return nil, ErrAlreadyInMatch
	} else if !errors.Is(err, repositories.ErrRosterEntryNotFound) {
		return nil, fmt.Errorf("failed to check existing entry: %w", err)
	}

	entry := &models.RosterEntry{
		MatchID:    matchID,
		PlayerID:   playerID,
		TeamID:     teamID,
		Side:       side,
		JoinStatus: models.JoinStatusPending,
	}

	unlock := s.locker.Lock(matchID)
	defer unlock()

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		count, err := s.rosterRepo.CountApproved(ctx, exec, matchID, side)
		if err != nil {
			return fmt.Errorf("failed to count approved entries: %w", err)
		}
		if count >= match.Format.MaxPlayersPerTeam() {
			return ErrSideFull
		}
		if err := s.rosterRepo.Create(ctx, exec, entry); err != nil {
			if errors.Is(err, repositories.ErrRosterDuplicateEntry) {
				return ErrAlreadyInMatch
			}
			return fmt.Errorf("failed to create roster entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notify.Event{
		Type:     notify.EventJoinRequest,
		MatchID:  matchID,
		PlayerID: intPtr(playerID),
		TeamID:   intPtr(teamID),
	})
	return entry, nil
}

// DecideJoin approves or declines a pending entry. Deciding an entry that is
// already decided is an idempotent no-op: no state change and no second
// notification. The pending check and the status write run under the match
// lock and one transaction, so concurrent decides resolve the entry exactly
// once.
func (s *rosterService) DecideJoin(ctx context.Context, matchID, entryID, captainID int, decision JoinDecision) error {
	if !decision.Valid() {
		return ErrInvalidJoinDecision
	}

	newStatus := models.JoinStatusDeclined
	if decision == DecisionApprove {
		newStatus = models.JoinStatusApproved
	}

	unlock := s.locker.Lock(matchID)
	defer unlock()

	var event *notify.Event
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to lock match %d: %w", matchID, err)
		}

		entry, err := s.rosterRepo.GetByID(ctx, exec, entryID)
		if err != nil {
			if errors.Is(err, repositories.ErrRosterEntryNotFound) {
				return ErrRosterEntryNotFound
			}
			return fmt.Errorf("failed to get roster entry %d: %w", entryID, err)
		}
		if entry.MatchID != matchID {
			return ErrRosterEntryNotFound
		}

		team, err := s.teamRepo.GetByID(ctx, entry.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to get team %d: %w", entry.TeamID, err)
		}
		if !isCaptainOf(captainID, team) {
			return ErrNotCaptain
		}

		if entry.JoinStatus != models.JoinStatusPending {
			return nil
		}
		if match.Status.Terminal() {
			return ErrInvalidMatchState
		}

		if newStatus == models.JoinStatusApproved {
			count, err := s.rosterRepo.CountApproved(ctx, exec, matchID, entry.Side)
			if err != nil {
				return fmt.Errorf("failed to count approved entries: %w", err)
			}
			if count >= match.Format.MaxPlayersPerTeam() {
				return ErrSideFull
			}
		}
		if err := s.rosterRepo.UpdateStatus(ctx, exec, entry.ID, newStatus); err != nil {
			return fmt.Errorf("failed to update roster entry %d: %w", entry.ID, err)
		}

		eventType := notify.EventJoinDeclined
		if newStatus == models.JoinStatusApproved {
			eventType = notify.EventJoinApproved
		}
		event = &notify.Event{
			Type:     eventType,
			MatchID:  matchID,
			PlayerID: intPtr(entry.PlayerID),
			TeamID:   intPtr(entry.TeamID),
		}
		return nil
	})
	if err != nil {
		return err
	}

	if event != nil {
		s.notifier.Publish(ctx, *event)
	}
	return nil
}

// ListRoster is a pure projection of the roster rows.
func (s *rosterService) ListRoster(ctx context.Context, matchID int) ([]*models.RosterEntry, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	entries, err := s.rosterRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for match %d: %w", matchID, err)
	}
	return entries, nil
}
