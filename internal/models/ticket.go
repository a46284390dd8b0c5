package models

import (
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/types"
)

type Ticket struct {
	BaseModel

	Title       string               `gorm:"not null"`
	Description string               `gorm:"not null"`
	Priority    types.TicketPriority `gorm:"not null;default:Low;index"`
	Status      types.TicketStatus   `gorm:"not null;default:Open;index"`
	AssigneeID  *ids.ID              `gorm:"index;type:char(26)"`
	ProjectID   ids.ID               `gorm:"not null;index;type:char(26)"`

	// Relationships
	Assignee *User   `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (t Ticket) IsAssigned() bool {
	return t.AssigneeID != nil && !t.AssigneeID.IsZero()
}

func (t Ticket) IsAssignedTo(userID ids.ID) bool {
	return t.IsAssigned() && t.AssigneeID.Equal(userID)
}

// Response renders the ticket. Assignee must be preloaded to be included.
func (t Ticket) Response() types.TicketResponse {
	response := types.TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Assignee != nil {
		assignee := t.Assignee.Public()
		response.Assignee = &assignee
	}
	if !t.Project.ID.IsZero() {
		response.ProjectTitle = t.Project.Title
	}
	return response
}
