package services

import (
	"context"
	"strings"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UpdateProjectInput struct {
	Title       *string
	Description *string
}

type Projects struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewProjects(db *gorm.DB, log logrus.FieldLogger) *Projects {
	return &Projects{db: db, log: log}
}

// accessibleProjects selects the ids of projects userID owns or belongs to.
func accessibleProjects(db *gorm.DB, userID ids.ID) *gorm.DB {
	memberOf := db.Model(&models.ProjectMembership{}).Select("project_id").Where("user_id = ?", userID)
	return db.Model(&models.Project{}).Select("id").Where("owner_id = ? OR id IN (?)", userID, memberOf)
}

// Create makes ownerID both owner and first member of a new project.
func (s *Projects) Create(ctx context.Context, ownerID ids.ID, title, description string) (models.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Project{}, apperr.BadRequest("Title is required")
	}

	project := models.Project{
		Title:       title,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner", "ProjectMemberships").Create(&project).Error; err != nil {
			return err
		}
		membership := models.ProjectMembership{UserID: ownerID, ProjectID: project.ID, Role: types.RoleOwner}
		return tx.Omit("User", "Project").Create(&membership).Error
	})
	if err != nil {
		return models.Project{}, apperr.Internal("Failed to create project", err)
	}

	s.log.WithFields(logrus.Fields{"project_id": project.ID.String(), "owner_id": ownerID.String()}).Info("Project created")

	return s.Load(ctx, project.ID)
}

// Load fetches a project with its owner and members populated.
func (s *Projects) Load(ctx context.Context, projectID ids.ID) (models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("ProjectMemberships", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("ProjectMemberships.User").
		First(&project, "id = ?", projectID).Error
	if err != nil {
		return models.Project{}, lookupError(err, "Project not found")
	}
	return project, nil
}

// ListForUser returns every project userID owns or is a member of, newest
// first.
func (s *Projects) ListForUser(ctx context.Context, userID ids.ID) ([]models.Project, error) {
	db := s.db.WithContext(ctx)

	var projects []models.Project
	err := db.
		Preload("Owner").
		Preload("ProjectMemberships.User").
		Where("id IN (?)", accessibleProjects(db, userID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch projects", err)
	}
	return projects, nil
}

func (s *Projects) Update(ctx context.Context, project models.Project, callerID ids.ID, input UpdateProjectInput) (models.Project, error) {
	if !project.IsOwner(callerID) {
		return models.Project{}, apperr.Forbidden("Only the project owner can update the project")
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return models.Project{}, apperr.BadRequest("Title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if len(updates) == 0 {
		return models.Project{}, apperr.BadRequest("Title or description is required")
	}

	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
		return models.Project{}, apperr.Internal("Failed to update project", err)
	}

	return s.Load(ctx, project.ID)
}

// Delete removes the project together with its tickets, their comments,
// its invites and memberships.
func (s *Projects) Delete(ctx context.Context, project models.Project, callerID ids.ID) (models.Project, error) {
	if !project.IsOwner(callerID) {
		return models.Project{}, apperr.Forbidden("Only the project owner can delete the project")
	}

	deleted, err := s.Load(ctx, project.ID)
	if err != nil {
		return models.Project{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tickets := tx.Model(&models.Ticket{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("ticket_id IN (?)", tickets).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", project.ID).Error
	})
	if err != nil {
		return models.Project{}, apperr.Internal("Failed to delete project", err)
	}

	s.log.WithField("project_id", project.ID.String()).Info("Project deleted")

	return deleted, nil
}
