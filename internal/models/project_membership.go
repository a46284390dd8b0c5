package models

import "github.com/monocle-dev/tracker/internal/ids"

type ProjectMembership struct {
	BaseModel

	UserID    ids.ID `gorm:"not null;uniqueIndex:idx_user_project;type:char(26)"`
	ProjectID ids.ID `gorm:"not null;uniqueIndex:idx_user_project;index;type:char(26)"`
	Role      string `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
