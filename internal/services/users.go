package services

import (
	"context"
	"strings"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/models"
	"gorm.io/gorm"
)

const (
	minSearchLength = 2
	maxSearchResult = 10
)

// '!' rather than backslash so the clause reads the same on every dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Search matches query case-insensitively against name and email. Queries
// shorter than two characters return nothing without touching the store.
func (s *Users) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	users := []models.User{}
	if len([]rune(query)) < minSearchLength {
		return users, nil
	}

	pattern := "%" + likeEscaper.Replace(query) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("name ASC").
		Limit(maxSearchResult).
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internal("Failed to search users", err)
	}
	return users, nil
}
