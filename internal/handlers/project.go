package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/models"
	"github.com/monocle-dev/tracker/internal/realtime"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/monocle-dev/tracker/internal/utils"
)

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type MemberRequest struct {
	MemberID string `json:"memberId" binding:"required"`
}

func projectResponses(projects []models.Project) []types.ProjectResponse {
	response := make([]types.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, project.Response())
	}
	return response
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		h.fail(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	projects, err := h.projects.ListForUser(ctx.Request.Context(), userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{"projects": projectResponses(projects)})
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest

	if !h.bind(ctx, &req) {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		h.fail(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	project, err := h.projects.Create(ctx.Request.Context(), userID, req.Title, req.Description)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	created(ctx, gin.H{"message": "Project created successfully", "project": project.Response()})
}

func (h *Handler) GetProject(ctx *gin.Context) {
	_, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	project, err := h.projects.Load(ctx.Request.Context(), access.Project.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{"project": project.Response()})
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	var req UpdateProjectRequest

	if !h.bind(ctx, &req) {
		return
	}

	project, err := h.projects.Update(ctx.Request.Context(), access.Project, userID, services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(project.ID, realtime.EventProjectUpdated, nil)
	ok(ctx, gin.H{"message": "Project updated successfully", "project": project.Response()})
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	project, err := h.projects.Delete(ctx.Request.Context(), access.Project, userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(project.ID, realtime.EventProjectDeleted, nil)
	ok(ctx, gin.H{"message": "Project deleted successfully", "project": project.Response()})
}

func (h *Handler) AddMember(ctx *gin.Context) {
	h.changeMembers(ctx, h.membership.AddMember, "Member added successfully")
}

func (h *Handler) RemoveMember(ctx *gin.Context) {
	h.changeMembers(ctx, h.membership.RemoveMember, "Member removed successfully")
}

type memberChange func(ctx context.Context, project models.Project, callerID, memberID ids.ID) error

func (h *Handler) changeMembers(ctx *gin.Context, change memberChange, message string) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	var req MemberRequest

	if !h.bind(ctx, &req) {
		return
	}

	memberID, err := parseRequiredID(req.MemberID, "memberId")

	if err != nil {
		h.fail(ctx, err)
		return
	}

	if err := change(ctx.Request.Context(), access.Project, userID, memberID); err != nil {
		h.fail(ctx, err)
		return
	}

	project, err := h.projects.Load(ctx.Request.Context(), access.Project.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(project.ID, realtime.EventMembersChanged, nil)
	if !project.CanAccess(memberID) {
		h.disconnect(project.ID, memberID)
	}
	ok(ctx, gin.H{"message": message, "project": project.Response()})
}
