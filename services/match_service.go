package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sundayleague/match-system/models"
	"github.com/sundayleague/match-system/repositories"
)

type CreateMatchInput struct {
	TeamID int                `json:"team_id"`
	Type   models.MatchType   `json:"type"`
	Format models.MatchFormat `json:"format"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, captainID int, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ProposeOpponent(ctx context.Context, matchID, currentUserID, teamID int, kind models.ProposalKind) (*models.OpponentProposal, error)
	AcceptOpponent(ctx context.Context, matchID, proposalID, currentUserID int) (*models.Match, error)
	ListProposals(ctx context.Context, matchID int) ([]*models.OpponentProposal, error)
	CancelMatch(ctx context.Context, matchID int) error
}

type matchService struct {
	matchRepo    repositories.MatchRepository
	rosterRepo   repositories.RosterRepository
	teamRepo     repositories.TeamRepository
	proposalRepo repositories.ProposalRepository
	tx           repositories.TxRunner
	locker       *MatchLocker
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
	proposalRepo repositories.ProposalRepository,
	tx repositories.TxRunner,
	locker *MatchLocker,
) MatchService {
	return &matchService{
		matchRepo:    matchRepo,
		rosterRepo:   rosterRepo,
		teamRepo:     teamRepo,
		proposalRepo: proposalRepo,
		tx:           tx,
		locker:       locker,
	}
}

func (s *matchService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

// CreateMatch opens a pending match hosted by the captain's team. The
// captain is seated into side A as an approved roster entry in the same
// transaction.
func (s *matchService) CreateMatch(ctx context.Context, captainID int, input CreateMatchInput) (*models.Match, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidMatchType
	}
	if !input.Format.Valid() {
		return nil, ErrInvalidMatchFormat
	}

	team, err := s.getTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	if !isCaptainOf(captainID, team) {
		return nil, ErrNotCaptain
	}

	match := &models.Match{
		Type:    input.Type,
		Status:  models.MatchStatusPending,
		Format:  input.Format,
		TeamAID: team.ID,
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}
		seat := &models.RosterEntry{
			MatchID:    match.ID,
			PlayerID:   captainID,
			TeamID:     team.ID,
			Side:       models.SideA,
			JoinStatus: models.JoinStatusApproved,
		}
		if err := s.rosterRepo.Create(ctx, exec, seat); err != nil {
			return fmt.Errorf("failed to seat captain: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

// ProposeOpponent files a candidate team B while the match is still pending.
// An invite is filed by the hosting captain toward the opposing team; a
// challenge is filed by the challenging team's own captain.
func (s *matchService) ProposeOpponent(ctx context.Context, matchID, currentUserID, teamID int, kind models.ProposalKind) (*models.OpponentProposal, error) {
	if !kind.Valid() {
		return nil, ErrInvalidProposalKind
	}

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending {
		return nil, ErrInvalidMatchState
	}
	if teamID == match.TeamAID {
		return nil, ErrProposalOwnTeam
	}

	opponent, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	host, err := s.getTeam(ctx, match.TeamAID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case models.ProposalInvite:
		if !isCaptainOf(currentUserID, host) {
			return nil, ErrNotCaptain
		}
	case models.ProposalChallenge:
		if !isCaptainOf(currentUserID, opponent) {
			return nil, ErrNotCaptain
		}
	}

	pending, err := s.proposalRepo.HasPendingForTeam(ctx, matchID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending proposals: %w", err)
	}
	if pending {
		return nil, ErrProposalAlreadyPending
	}

	proposal := &models.OpponentProposal{
		MatchID: matchID,
		TeamID:  teamID,
		Kind:    kind,
		Status:  models.ProposalStatusPending,
	}
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		if errors.Is(err, repositories.ErrProposalDuplicatePending) {
			return nil, ErrProposalAlreadyPending
		}
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return proposal, nil
}

// AcceptOpponent is the single opponent-assignment event. It sets team B,
// confirms the match, seats the opposing captain into side B, and rejects
// every other pending proposal — all in one transaction under the match
// lock. A second acceptance attempt finds the match already confirmed and
// fails with ErrInvalidMatchState.
func (s *matchService) AcceptOpponent(ctx context.Context, matchID, proposalID, currentUserID int) (*models.Match, error) {
	unlock := s.locker.Lock(matchID)
	defer unlock()

	var accepted *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to lock match %d: %w", matchID, err)
		}
		if match.Status != models.MatchStatusPending {
			return ErrInvalidMatchState
		}

		proposal, err := s.proposalRepo.GetByID(ctx, exec, proposalID)
		if err != nil {
			if errors.Is(err, repositories.ErrProposalNotFound) {
				return ErrProposalNotFound
			}
			return fmt.Errorf("failed to get proposal %d: %w", proposalID, err)
		}
		if proposal.MatchID != matchID {
			return ErrProposalNotFound
		}
		if proposal.Status != models.ProposalStatusPending {
			return ErrProposalNotPending
		}

		opponent, err := s.getTeam(ctx, proposal.TeamID)
		if err != nil {
			return err
		}
		host, err := s.getTeam(ctx, match.TeamAID)
		if err != nil {
			return err
		}

		// The side that did not file the proposal is the one that accepts it.
		switch proposal.Kind {
		case models.ProposalInvite:
			if !isCaptainOf(currentUserID, opponent) {
				return ErrNotCaptain
			}
		case models.ProposalChallenge:
			if !isCaptainOf(currentUserID, host) {
				return ErrNotCaptain
			}
		}

		if err := s.proposalRepo.UpdateStatus(ctx, exec, proposal.ID, models.ProposalStatusAccepted); err != nil {
			return fmt.Errorf("failed to accept proposal %d: %w", proposal.ID, err)
		}
		if _, err := s.proposalRepo.RejectPendingExcept(ctx, exec, matchID, proposal.ID); err != nil {
			return fmt.Errorf("failed to reject competing proposals: %w", err)
		}

		match.TeamBID = &proposal.TeamID
		match.Status = models.MatchStatusConfirmed
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to confirm match %d: %w", matchID, err)
		}

		seat := &models.RosterEntry{
			MatchID:    match.ID,
			PlayerID:   opponent.CaptainID,
			TeamID:     opponent.ID,
			Side:       models.SideB,
			JoinStatus: models.JoinStatusApproved,
		}
		if err := s.rosterRepo.Create(ctx, exec, seat); err != nil {
			return fmt.Errorf("failed to seat opposing captain: %w", err)
		}

		accepted = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (s *matchService) ListProposals(ctx context.Context, matchID int) ([]*models.OpponentProposal, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	proposals, err := s.proposalRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals for match %d: %w", matchID, err)
	}
	return proposals, nil
}

// CancelMatch is the administrative cancellation, triggered from outside the
// core. Allowed from pending and confirmed only.
func (s *matchService) CancelMatch(ctx context.Context, matchID int) error {
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
		if match.Status != models.MatchStatusPending && match.Status != models.MatchStatusConfirmed {
			return ErrInvalidMatchState
		}
		match.Status = models.MatchStatusCancelled
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to cancel match %d: %w", matchID, err)
		}
		return nil
	})
}
