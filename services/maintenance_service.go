package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sundayleague/match-system/repositories"
)

// SweepReport summarizes one maintenance pass.
type SweepReport struct {
	CancelledMatches    int64 `json:"cancelled_matches"`
	ClosedRatingWindows int64 `json:"closed_rating_windows"`
}

// MaintenanceService runs the periodic sweeps: stale pending matches are
// cancelled and expired rating windows are closed. Both passes are single
// UPDATE statements, so the sweep is idempotent and safe to trigger from a
// scheduler tick or an API call while live traffic is in flight.
type MaintenanceService interface {
	Sweep(ctx context.Context) (*SweepReport, error)
}

type maintenanceService struct {
	matchRepo  repositories.MatchRepository
	pendingTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewMaintenanceService(matchRepo repositories.MatchRepository, pendingTTL time.Duration, logger *slog.Logger) MaintenanceService {
	return &maintenanceService{
		matchRepo:  matchRepo,
		pendingTTL: pendingTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *maintenanceService) Sweep(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{}
	now := s.now()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cancelled, err := s.matchRepo.CancelStalePending(ctx, now.Add(-s.pendingTTL))
		if err != nil {
			return err
		}
		report.CancelledMatches = cancelled
		return nil
	})
	g.Go(func() error {
		closed, err := s.matchRepo.CloseExpiredRatingWindows(ctx, now)
		if err != nil {
			return err
		}
		report.ClosedRatingWindows = closed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if report.CancelledMatches > 0 || report.ClosedRatingWindows > 0 {
		s.logger.Info("maintenance sweep applied changes",
			slog.Int64("cancelled_matches", report.CancelledMatches),
			slog.Int64("closed_rating_windows", report.ClosedRatingWindows),
		)
	}
	return report, nil
}
