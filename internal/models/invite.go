package models

import (
	"time"

	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/types"
)

// Invite is never deleted while its project exists; it is kept as history
// once accepted or rejected.
type Invite struct {
	BaseModel

	ProjectID ids.ID             `gorm:"not null;index;type:char(26)"`
	Email     string             `gorm:"not null;index"`
	TokenHash string             `gorm:"not null;uniqueIndex;size:64"`
	Status    types.InviteStatus `gorm:"not null;default:pending;index"`
	ExpiresAt time.Time          `gorm:"not null;index"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (i Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i Invite) Response() types.InviteResponse {
	return types.InviteResponse{
		ID:        i.ID,
		ProjectID: i.ProjectID,
		Email:     i.Email,
		Status:    i.Status,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}
