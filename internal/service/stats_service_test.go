package service

import (
	"context"
	"testing"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	officerID := "officer-1"

	repo := &mockReportRepo{reports: map[string]*entity.Report{
		"r1": {ID: "r1", Status: entity.StatusPending},
		"r2": {ID: "r2", Status: entity.StatusReceived, AssignedTo: &officerID},
		"r3": {ID: "r3", Status: entity.StatusInProgress, AssignedTo: &officerID},
		"r4": {ID: "r4", Status: entity.StatusCompleted},
		"r5": {ID: "r5", Status: entity.StatusCancelled},
	}}
	s := NewStatsService(repo, testLogger())

	t.Run("agent sees global counts", func(t *testing.T) {
		stats, err := s.Dashboard(ctx, agentActor, "")
		if err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
		if stats.TotalReports != 5 {
			t.Errorf("expected 5 total, got %d", stats.TotalReports)
		}
		if stats.PendingReports != 1 || stats.ReceivedReports != 1 || stats.InProgressReports != 1 ||
			stats.CompletedReports != 1 || stats.CancelledReports != 1 {
			t.Errorf("unexpected breakdown: %+v", stats)
		}
	})

	t.Run("officer counts are scoped to assigned reports", func(t *testing.T) {
		stats, err := s.Dashboard(ctx, officerActor, "")
		if err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
		if stats.TotalReports != 2 {
			t.Errorf("expected 2 total, got %d", stats.TotalReports)
		}
	})

	t.Run("agent can filter by officer", func(t *testing.T) {
		stats, err := s.Dashboard(ctx, agentActor, officerID)
		if err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
		if stats.TotalReports != 2 {
			t.Errorf("expected 2 total, got %d", stats.TotalReports)
		}
	})
}
