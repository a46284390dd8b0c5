package models

import (
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/types"
)

type Project struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	OwnerID     ids.ID `gorm:"not null;index;type:char(26)"`

	// Relationships
	Owner              User                `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p Project) IsOwner(userID ids.ID) bool {
	return p.OwnerID.Equal(userID)
}

// MemberIDs lists the member set. ProjectMemberships must be preloaded.
func (p Project) MemberIDs() []ids.ID {
	memberIDs := make([]ids.ID, 0, len(p.ProjectMemberships))
	for _, membership := range p.ProjectMemberships {
		memberIDs = append(memberIDs, membership.UserID)
	}
	return memberIDs
}

func (p Project) IsMember(userID ids.ID) bool {
	return ids.Contains(p.MemberIDs(), userID)
}

// CanAccess is the single authorization predicate for project-scoped work.
func (p Project) CanAccess(userID ids.ID) bool {
	return p.IsOwner(userID) || p.IsMember(userID)
}

// Response renders the project. Owner and ProjectMemberships.User are only
// included when preloaded.
func (p Project) Response() types.ProjectResponse {
	response := types.ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		Members:     make([]types.UserResponse, 0, len(p.ProjectMemberships)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.Owner.ID.IsZero() {
		owner := p.Owner.Public()
		response.Owner = &owner
	}
	for _, membership := range p.ProjectMemberships {
		if membership.User.ID.IsZero() {
			response.Members = append(response.Members, types.UserResponse{ID: membership.UserID})
			continue
		}
		response.Members = append(response.Members, membership.User.Public())
	}
	return response
}
