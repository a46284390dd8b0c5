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

type CreateTicketInput struct {
	Title       string
	Description string
	Priority    types.TicketPriority
	Status      types.TicketStatus
}

type UpdateTicketInput struct {
	Title       *string
	Description *string
	Priority    *types.TicketPriority
	Status      *types.TicketStatus
}

// TicketFilter narrows List. Set fields must all match.
type TicketFilter struct {
	Status     *types.TicketStatus
	Priority   *types.TicketPriority
	AssigneeID *ids.ID
}

// Tickets owns the ticket lifecycle. Status and priority change freely;
// the assignee moves between unassigned and assigned through Assign,
// Unassign and ChangeAssignee only.
type Tickets struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewTickets(db *gorm.DB, log logrus.FieldLogger) *Tickets {
	return &Tickets{db: db, log: log}
}

func (s *Tickets) Create(ctx context.Context, project models.Project, input CreateTicketInput) (models.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return models.Ticket{}, apperr.BadRequest("Title and description are required")
	}

	ticket := models.Ticket{
		Title:       title,
		Description: description,
		Priority:    types.PriorityLow,
		Status:      types.StatusOpen,
		ProjectID:   project.ID,
	}
	if input.Priority != "" {
		if !input.Priority.Valid() {
			return models.Ticket{}, apperr.BadRequest("Invalid priority")
		}
		ticket.Priority = input.Priority
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return models.Ticket{}, apperr.BadRequest("Invalid status")
		}
		ticket.Status = input.Status
	}

	if err := s.db.WithContext(ctx).Omit("Assignee", "Project").Create(&ticket).Error; err != nil {
		return models.Ticket{}, apperr.Internal("Failed to create ticket", err)
	}

	return ticket, nil
}

func (s *Tickets) List(ctx context.Context, projectID ids.ID, filter TicketFilter) ([]models.Ticket, error) {
	query := s.db.WithContext(ctx).Preload("Assignee").Where("project_id = ?", projectID)

	if filter.Status != nil {
		if !filter.Status.Valid() {
			return nil, apperr.BadRequest("Invalid status")
		}
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		if !filter.Priority.Valid() {
			return nil, apperr.BadRequest("Invalid priority")
		}
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var tickets []models.Ticket
	if err := query.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch tickets", err)
	}
	return tickets, nil
}

// Get loads a ticket of the project with its assignee.
func (s *Tickets) Get(ctx context.Context, projectID, ticketID ids.ID) (models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).Preload("Assignee").First(&ticket, "id = ?", ticketID).Error; err != nil {
		return models.Ticket{}, lookupError(err, "Ticket not found")
	}
	if !ticket.ProjectID.Equal(projectID) {
		return models.Ticket{}, apperr.BadRequest("Ticket does not belong to this project")
	}
	return ticket, nil
}

// Update changes any subset of title, description, priority and status.
// Only the project owner and the current assignee may do so.
func (s *Tickets) Update(ctx context.Context, project models.Project, ticketID, callerID ids.ID, input UpdateTicketInput) (models.Ticket, error) {
	ticket, err := s.Get(ctx, project.ID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}

	if !project.IsOwner(callerID) && !ticket.IsAssignedTo(callerID) {
		return models.Ticket{}, apperr.Forbidden("Only the project owner or the assignee can update this ticket")
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return models.Ticket{}, apperr.BadRequest("Title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return models.Ticket{}, apperr.BadRequest("Description cannot be empty")
		}
		updates["description"] = description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return models.Ticket{}, apperr.BadRequest("Invalid priority")
		}
		updates["priority"] = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return models.Ticket{}, apperr.BadRequest("Invalid status")
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return models.Ticket{}, apperr.BadRequest("Title, description, priority or status is required")
	}

	if err := s.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", ticket.ID).Updates(updates).Error; err != nil {
		return models.Ticket{}, apperr.Internal("Failed to update ticket", err)
	}

	return s.Get(ctx, project.ID, ticket.ID)
}

// Delete removes the ticket and every comment on it.
func (s *Tickets) Delete(ctx context.Context, project models.Project, ticketID, callerID ids.ID) (models.Ticket, error) {
	if !project.IsOwner(callerID) {
		return models.Ticket{}, apperr.Forbidden("Only the project owner can delete tickets")
	}

	ticket, err := s.Get(ctx, project.ID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", ticket.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Ticket{}, "id = ?", ticket.ID).Error
	})
	if err != nil {
		return models.Ticket{}, apperr.Internal("Failed to delete ticket", err)
	}

	return ticket, nil
}

// checkAssignee verifies assigneeID may hold tickets in project.
func (s *Tickets) checkAssignee(ctx context.Context, project models.Project, assigneeID ids.ID) error {
	if assigneeID.IsZero() {
		return apperr.BadRequest("Assignee id is required")
	}
	if !project.CanAccess(assigneeID) {
		return apperr.Forbidden("Assignee is not a member of this project")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", assigneeID).Error; err != nil {
		return lookupError(err, "User not found")
	}
	return nil
}

// Assign moves an unassigned ticket to assigneeID.
func (s *Tickets) Assign(ctx context.Context, project models.Project, ticketID, callerID, assigneeID ids.ID) (models.Ticket, error) {
	ticket, err := s.Get(ctx, project.ID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !project.IsOwner(callerID) {
		return models.Ticket{}, apperr.Forbidden("You are not authorized to assign this ticket")
	}
	if ticket.IsAssigned() {
		return models.Ticket{}, apperr.Conflict("Ticket is already assigned")
	}
	if err := s.checkAssignee(ctx, project, assigneeID); err != nil {
		return models.Ticket{}, err
	}

	result := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND assignee_id IS NULL", ticket.ID).
		Update("assignee_id", assigneeID)
	if result.Error != nil {
		return models.Ticket{}, apperr.Internal("Failed to assign ticket", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Ticket{}, apperr.Conflict("Ticket is already assigned")
	}

	s.log.WithFields(logrus.Fields{"ticket_id": ticket.ID.String(), "assignee_id": assigneeID.String()}).Info("Ticket assigned")

	return s.Get(ctx, project.ID, ticket.ID)
}

func (s *Tickets) Unassign(ctx context.Context, project models.Project, ticketID, callerID ids.ID) (models.Ticket, error) {
	ticket, err := s.Get(ctx, project.ID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !project.IsOwner(callerID) {
		return models.Ticket{}, apperr.Forbidden("You are not authorized to unassign this ticket")
	}
	if !ticket.IsAssigned() {
		return models.Ticket{}, apperr.BadRequest("Ticket is not assigned")
	}

	err = s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("assignee_id", nil).Error
	if err != nil {
		return models.Ticket{}, apperr.Internal("Failed to unassign ticket", err)
	}

	return s.Get(ctx, project.ID, ticket.ID)
}

// ChangeAssignee hands an assigned ticket to another participant.
func (s *Tickets) ChangeAssignee(ctx context.Context, project models.Project, ticketID, callerID, assigneeID ids.ID) (models.Ticket, error) {
	ticket, err := s.Get(ctx, project.ID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !project.IsOwner(callerID) {
		return models.Ticket{}, apperr.Forbidden("You are not authorized to change the assignee")
	}
	if !ticket.IsAssigned() {
		return models.Ticket{}, apperr.BadRequest("Ticket is not assigned, assign it first")
	}
	if ticket.IsAssignedTo(assigneeID) {
		return models.Ticket{}, apperr.Conflict("Ticket is already assigned to this user")
	}
	if err := s.checkAssignee(ctx, project, assigneeID); err != nil {
		return models.Ticket{}, err
	}

	err = s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("assignee_id", assigneeID).Error
	if err != nil {
		return models.Ticket{}, apperr.Internal("Failed to change assignee", err)
	}

	return s.Get(ctx, project.ID, ticket.ID)
}
