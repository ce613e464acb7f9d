package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sundayleague/match-system/models"
)

func TestSweep(t *testing.T) {
	now := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
	ttl := 48 * time.Hour

	matches := newFakeMatchRepo()
	stale := matches.put(&models.Match{
		Status:    models.MatchStatusPending,
		TeamAID:   teamAlphaID,
		CreatedAt: now.Add(-ttl - time.Hour),
	})
	fresh := matches.put(&models.Match{
		Status:    models.MatchStatusPending,
		TeamAID:   teamAlphaID,
		CreatedAt: now.Add(-time.Hour),
	})

	expired := now.Add(-time.Minute)
	open := now.Add(time.Hour)
	closable := matches.put(&models.Match{
		Status:         models.MatchStatusCompleted,
		TeamAID:        teamAlphaID,
		RatingsOpen:    true,
		RatingsCloseAt: &expired,
	})
	stillOpen := matches.put(&models.Match{
		Status:         models.MatchStatusCompleted,
		TeamAID:        teamAlphaID,
		RatingsOpen:    true,
		RatingsCloseAt: &open,
	})

	svc := &maintenanceService{
		matchRepo:  matches,
		pendingTTL: ttl,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        func() time.Time { return now },
	}

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.CancelledMatches != 1 {
		t.Errorf("cancelled = %d, want 1", report.CancelledMatches)
	}
	if report.ClosedRatingWindows != 1 {
		t.Errorf("closed windows = %d, want 1", report.ClosedRatingWindows)
	}

	if m, _ := matches.GetByID(context.Background(), stale.ID); m.Status != models.MatchStatusCancelled {
		t.Errorf("stale match status = %q, want cancelled", m.Status)
	}
	if m, _ := matches.GetByID(context.Background(), fresh.ID); m.Status != models.MatchStatusPending {
		t.Errorf("fresh match status = %q, want pending", m.Status)
	}
	if m, _ := matches.GetByID(context.Background(), closable.ID); m.RatingsOpen {
		t.Error("expired rating window should be closed")
	}
	if m, _ := matches.GetByID(context.Background(), stillOpen.ID); !m.RatingsOpen {
		t.Error("unexpired rating window should stay open")
	}

	// A second pass finds nothing left to do.
	report, err = svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if report.CancelledMatches != 0 || report.ClosedRatingWindows != 0 {
		t.Errorf("second pass = %+v, want a no-op", report)
	}
}
