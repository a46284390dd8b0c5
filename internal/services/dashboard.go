package services

import (
	"context"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/types"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const activeWorkLimit = 10

var activeStatuses = []types.TicketStatus{types.StatusOpen, types.StatusInProgress}

type Dashboard struct {
	Stats      types.DashboardStats
	ActiveWork []models.Ticket
}

type Dashboards struct {
	db *gorm.DB
}

func NewDashboards(db *gorm.DB) *Dashboards {
	return &Dashboards{db: db}
}

// Build summarizes userID's workload across the projects they can access.
// The four queries are independent and run concurrently.
func (s *Dashboards) Build(ctx context.Context, userID ids.ID) (Dashboard, error) {
	g, ctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(ctx)

	assigned := func() *gorm.DB {
		return db.Model(&models.Ticket{}).
			Where("assignee_id = ?", userID).
			Where("project_id IN (?)", accessibleProjects(db, userID))
	}

	var dashboard Dashboard

	g.Go(func() error {
		return db.Model(&models.Project{}).
			Where("id IN (?)", accessibleProjects(db, userID)).
			Count(&dashboard.Stats.TotalProjects).Error
	})
	g.Go(func() error {
		return assigned().Where("status IN ?", activeStatuses).Count(&dashboard.Stats.ActiveTicketsCount).Error
	})
	g.Go(func() error {
		return assigned().Where("priority = ?", types.PriorityHigh).Count(&dashboard.Stats.HighPriorityCount).Error
	})
	g.Go(func() error {
		dashboard.ActiveWork = []models.Ticket{}
		return assigned().
			Preload("Project").
			Preload("Assignee").
			Where("status IN ?", activeStatuses).
			Order("CASE priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END").
			Order("updated_at DESC").
			Limit(activeWorkLimit).
			Find(&dashboard.ActiveWork).Error
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, apperr.Internal("Failed to fetch dashboard data", err)
	}

	return dashboard, nil
}
