package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/realtime"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/monocle-dev/tracker/internal/utils"
)

type CreateTicketRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Priority    types.TicketPriority `json:"priority"`
	Status      types.TicketStatus   `json:"status"`
}

type UpdateTicketRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Priority    *types.TicketPriority `json:"priority"`
	Status      *types.TicketStatus   `json:"status"`
}

type AssigneeRequest struct {
	AssigneeID string `json:"assigneeId" binding:"required"`
}

func ticketResponses(tickets []models.Ticket) []types.TicketResponse {
	response := make([]types.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, ticket.Response())
	}
	return response
}

func (h *Handler) CreateTicket(ctx *gin.Context) {
	_, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	var req CreateTicketRequest

	if !h.bind(ctx, &req) {
		return
	}

	ticket, err := h.tickets.Create(ctx.Request.Context(), access.Project, services.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(ticket.ProjectID, realtime.EventTicketChanged, &ticket.ID)
	created(ctx, gin.H{"message": "Ticket created successfully", "ticket": ticket.Response()})
}

func (h *Handler) ListTickets(ctx *gin.Context) {
	_, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	var filter services.TicketFilter

	if status := ctx.Query("status"); status != "" {
		value := types.TicketStatus(status)
		filter.Status = &value
	}

	if priority := ctx.Query("priority"); priority != "" {
		value := types.TicketPriority(priority)
		filter.Priority = &value
	}

	assigneeID, err := parseOptionalID(ctx.Query("assignee"), "assignee")

	if err != nil {
		h.fail(ctx, err)
		return
	}

	filter.AssigneeID = assigneeID

	tickets, err := h.tickets.List(ctx.Request.Context(), access.Project.ID, filter)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{"tickets": ticketResponses(tickets)})
}

func (h *Handler) ticketID(ctx *gin.Context) (ids.ID, bool) {
	ticketID, err := utils.ParamID(ctx, "ticketId")

	if err != nil {
		h.fail(ctx, err)
		return ids.ID{}, false
	}

	return ticketID, true
}

func (h *Handler) GetTicket(ctx *gin.Context) {
	_, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	ticketID, valid := h.ticketID(ctx)
	if !valid {
		return
	}

	ticket, err := h.tickets.Get(ctx.Request.Context(), access.Project.ID, ticketID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{"ticket": ticket.Response()})
}

func (h *Handler) UpdateTicket(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	ticketID, valid := h.ticketID(ctx)
	if !valid {
		return
	}

	var req UpdateTicketRequest

	if !h.bind(ctx, &req) {
		return
	}

	ticket, err := h.tickets.Update(ctx.Request.Context(), access.Project, ticketID, userID, services.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(ticket.ProjectID, realtime.EventTicketChanged, &ticket.ID)
	ok(ctx, gin.H{"message": "Ticket updated successfully", "ticket": ticket.Response()})
}

func (h *Handler) DeleteTicket(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	ticketID, valid := h.ticketID(ctx)
	if !valid {
		return
	}

	ticket, err := h.tickets.Delete(ctx.Request.Context(), access.Project, ticketID, userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(ticket.ProjectID, realtime.EventTicketDeleted, &ticket.ID)
	ok(ctx, gin.H{"message": "Ticket deleted successfully", "ticket": ticket.Response()})
}

func (h *Handler) AssignTicket(ctx *gin.Context) {
	h.reassign(ctx, func(access services.Access, ticketID, userID, assigneeID ids.ID) (models.Ticket, error) {
		return h.tickets.Assign(ctx.Request.Context(), access.Project, ticketID, userID, assigneeID)
	}, true, "Ticket assigned successfully")
}

func (h *Handler) ChangeAssignee(ctx *gin.Context) {
	h.reassign(ctx, func(access services.Access, ticketID, userID, assigneeID ids.ID) (models.Ticket, error) {
		return h.tickets.ChangeAssignee(ctx.Request.Context(), access.Project, ticketID, userID, assigneeID)
	}, true, "Assignee changed successfully")
}

func (h *Handler) UnassignTicket(ctx *gin.Context) {
	h.reassign(ctx, func(access services.Access, ticketID, userID, _ ids.ID) (models.Ticket, error) {
		return h.tickets.Unassign(ctx.Request.Context(), access.Project, ticketID, userID)
	}, false, "Ticket unassigned successfully")
}

type assignment func(access services.Access, ticketID, userID, assigneeID ids.ID) (models.Ticket, error)

func (h *Handler) reassign(ctx *gin.Context, apply assignment, needsAssignee bool, message string) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	ticketID, valid := h.ticketID(ctx)
	if !valid {
		return
	}

	var assigneeID ids.ID

	if needsAssignee {
		var req AssigneeRequest

		if !h.bind(ctx, &req) {
			return
		}

		id, err := ids.Parse(req.AssigneeID)

		if err != nil {
			h.fail(ctx, apperr.BadRequest("Invalid assigneeId"))
			return
		}

		assigneeID = id
	}

	ticket, err := apply(access, ticketID, userID, assigneeID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(ticket.ProjectID, realtime.EventTicketChanged, &ticket.ID)
	ok(ctx, gin.H{"message": message, "ticket": ticket.Response()})
}
