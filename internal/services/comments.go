package services

import (
	"context"
	"errors"
	"strings"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Comments is an append-only discussion per ticket, threaded one level
// deep.
type Comments struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewComments(db *gorm.DB, log logrus.FieldLogger) *Comments {
	return &Comments{db: db, log: log}
}

func (s *Comments) ticket(ctx context.Context, ticketID ids.ID) (models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "id = ?", ticketID).Error; err != nil {
		return models.Ticket{}, lookupError(err, "Ticket not found")
	}
	return ticket, nil
}

func canDiscuss(project models.Project, ticket models.Ticket, userID ids.ID) bool {
	return ticket.IsAssignedTo(userID) || project.CanAccess(userID)
}

// Add appends a comment. parentID, when set, must name a top-level comment
// on the same ticket.
func (s *Comments) Add(ctx context.Context, project models.Project, ticketID, authorID ids.ID, body string, parentID *ids.ID) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, apperr.BadRequest("Comment is required")
	}

	ticket, err := s.ticket(ctx, ticketID)
	if err != nil {
		return models.Comment{}, err
	}
	if !ticket.ProjectID.Equal(project.ID) {
		return models.Comment{}, apperr.BadRequest("Ticket does not belong to this project")
	}
	if !canDiscuss(project, ticket, authorID) {
		return models.Comment{}, apperr.Forbidden("You are not allowed to comment on this ticket")
	}

	db := s.db.WithContext(ctx)

	if parentID != nil {
		var parent models.Comment
		err := db.First(&parent, "id = ?", *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Comment{}, apperr.BadRequest("Parent comment not found")
		}
		if err != nil {
			return models.Comment{}, apperr.Internal("Failed to add comment", err)
		}
		if !parent.TicketID.Equal(ticket.ID) {
			return models.Comment{}, apperr.BadRequest("Parent comment belongs to another ticket")
		}
		if parent.ParentID != nil {
			return models.Comment{}, apperr.BadRequest("Replies cannot be nested")
		}
	}

	comment := models.Comment{
		TicketID: ticket.ID,
		UserID:   authorID,
		ParentID: parentID,
		Body:     body,
	}
	if err := db.Omit("Ticket", "User").Create(&comment).Error; err != nil {
		return models.Comment{}, apperr.Internal("Failed to add comment", err)
	}

	if err := db.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return models.Comment{}, apperr.Internal("Failed to add comment", err)
	}

	return comment, nil
}

// List returns the ticket's comments in creation order with authors.
func (s *Comments) List(ctx context.Context, project models.Project, ticketID, callerID ids.ID) ([]models.Comment, error) {
	ticket, err := s.ticket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.ProjectID.Equal(project.ID) {
		return nil, apperr.BadRequest("Ticket does not belong to this project")
	}
	if !canDiscuss(project, ticket, callerID) {
		return nil, apperr.Forbidden("You are not allowed to view comments on this ticket")
	}

	comments, err := s.ForTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ForTicket reads comments without authorization checks.
func (s *Comments) ForTicket(ctx context.Context, ticketID ids.ID) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comments", err)
	}
	return comments, nil
}
