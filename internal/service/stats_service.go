package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
)

// StatsService agrega contagens de laudos para o dashboard, com o
// mesmo escopo de visibilidade por papel do motor de ciclo de vida
type StatsService interface {
	Dashboard(ctx context.Context, actor entity.Actor, officerFilter string) (*entity.DashboardStats, error)
}

type statsService struct {
	reportRepo repository.ReportRepository
	log        *logrus.Entry
}

func NewStatsService(reportRepo repository.ReportRepository, log *logrus.Logger) StatsService {
	return &statsService{
		reportRepo: reportRepo,
		log:        logrus.NewEntry(log),
	}
}

func (s *statsService) Dashboard(ctx context.Context, actor entity.Actor, officerFilter string) (*entity.DashboardStats, error) {
	const op = "service.Stats.Dashboard"

	filter := repository.ReportFilter{}
	if actor.Role == entity.RoleOfficer {
		filter.AssignedTo = actor.ID
	} else if officerFilter != "" {
		filter.AssignedTo = officerFilter
	}

	counts, err := s.reportRepo.CountByStatus(ctx, filter)
	if err != nil {
		s.log.WithField("operation", op).WithError(err).Errorf("%s: failed to count reports", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := &entity.DashboardStats{
		PendingReports:    counts[entity.StatusPending],
		ReceivedReports:   counts[entity.StatusReceived],
		InProgressReports: counts[entity.StatusInProgress],
		CompletedReports:  counts[entity.StatusCompleted],
		CancelledReports:  counts[entity.StatusCancelled],
	}
	for _, n := range counts {
		stats.TotalReports += n
	}

	return stats, nil
}
