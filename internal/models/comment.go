package models

import (
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/types"
)

// Comment is immutable once created. ParentID, when set, points at a
// top-level comment on the same ticket.
type Comment struct {
	BaseModel

	TicketID ids.ID  `gorm:"not null;index;type:char(26)"`
	UserID   ids.ID  `gorm:"not null;index;type:char(26)"`
	ParentID *ids.ID `gorm:"index;type:char(26)"`
	Body     string  `gorm:"not null"`

	// Relationships
	Ticket Ticket `gorm:"foreignKey:TicketID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c Comment) Response() types.CommentResponse {
	response := types.CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		ParentID:  c.ParentID,
		Comment:   c.Body,
		CreatedAt: c.CreatedAt,
	}
	if !c.User.ID.IsZero() {
		author := c.User.Public()
		response.Author = &author
	}
	return response
}
