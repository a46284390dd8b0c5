package services

import (
	"context"
	"errors"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/models"
	"gorm.io/gorm"
)

// Scope names the resource a request targets. Either field may be unset;
// a ticket id alone is enough to find its project.
type Scope struct {
	ProjectID *ids.ID
	TicketID  *ids.ID
}

// Access is the outcome of a successful Resolve. Project always carries its
// memberships; Ticket is set when the scope named an existing one.
type Access struct {
	Project models.Project
	Ticket  *models.Ticket
}

// Guard decides whether a caller may act on a project. Every project and
// ticket scoped operation goes through Resolve first.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

func (g *Guard) Resolve(ctx context.Context, callerID ids.ID, scope Scope) (Access, error) {
	var access Access

	if scope.TicketID != nil {
		var ticket models.Ticket
		err := g.db.WithContext(ctx).First(&ticket, "id = ?", *scope.TicketID).Error
		switch {
		case err == nil:
			access.Ticket = &ticket
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return Access{}, apperr.Internal("Failed to resolve project", err)
		}
	}

	var projectID ids.ID
	switch {
	case scope.ProjectID != nil:
		projectID = *scope.ProjectID
	case access.Ticket != nil:
		projectID = access.Ticket.ProjectID
	default:
		return Access{}, apperr.BadRequest("Project ID not provided")
	}

	if err := g.db.WithContext(ctx).Preload("ProjectMemberships").First(&access.Project, "id = ?", projectID).Error; err != nil {
		return Access{}, lookupError(err, "Project not found")
	}

	if !access.Project.CanAccess(callerID) {
		return Access{}, apperr.Forbidden("You do not have access to this project")
	}

	if access.Ticket != nil && !access.Ticket.ProjectID.Equal(access.Project.ID) {
		return Access{}, apperr.BadRequest("Ticket does not belong to this project")
	}

	return access, nil
}
