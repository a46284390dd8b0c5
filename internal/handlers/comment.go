package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/realtime"
	"github.com/monocle-dev/tracker/internal/types"
)

type CommentRequest struct {
	Comment  string `json:"comment" binding:"required"`
	ParentID string `json:"parentId"`
}

func (h *Handler) AddComment(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	ticketID, valid := h.ticketID(ctx)
	if !valid {
		return
	}

	var req CommentRequest

	if !h.bind(ctx, &req) {
		return
	}

	parentID, err := parseOptionalID(req.ParentID, "parentId")

	if err != nil {
		h.fail(ctx, err)
		return
	}

	comment, err := h.comments.Add(ctx.Request.Context(), access.Project, ticketID, userID, req.Comment, parentID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(access.Project.ID, realtime.EventCommentAdded, &comment.TicketID)
	created(ctx, gin.H{"message": "Comment added successfully", "comment": comment.Response()})
}

func (h *Handler) ListComments(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	ticketID, valid := h.ticketID(ctx)
	if !valid {
		return
	}

	comments, err := h.comments.List(ctx.Request.Context(), access.Project, ticketID, userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, comment.Response())
	}

	ok(ctx, gin.H{"comments": response})
}
