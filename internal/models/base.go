package models

import (
	"time"

	"github.com/monocle-dev/tracker/internal/ids"
	"gorm.io/gorm"
)

// BaseModel replaces gorm.Model with a ULID primary key. Records are hard
// deleted so there is no DeletedAt column.
type BaseModel struct {
	ID        ids.ID `gorm:"primaryKey;type:char(26)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID.IsZero() {
		m.ID = ids.New()
	}
	return nil
}
