package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/realtime"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/monocle-dev/tracker/internal/utils"
)

type InviteRequest struct {
	Email       string `json:"email" binding:"required"`
	ExpiryHours int    `json:"expiryHours" binding:"omitempty,min=1,max=720"`
}

func (h *Handler) InviteMember(ctx *gin.Context) {
	_, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	inviter, err := utils.GetCurrentUser(ctx)

	if err != nil {
		h.fail(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	var req InviteRequest

	if !h.bind(ctx, &req) {
		return
	}

	invite, _, err := h.membership.InviteByEmail(ctx.Request.Context(), access.Project, inviter, req.Email, req.ExpiryHours)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	created(ctx, gin.H{"message": "Invite sent successfully", "invite": invite.Response()})
}

func (h *Handler) ListInvites(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	invites, err := h.membership.ListInvites(ctx.Request.Context(), access.Project, userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.InviteResponse, 0, len(invites))
	for _, invite := range invites {
		response = append(response, invite.Response())
	}

	ok(ctx, gin.H{"invites": response})
}

func (h *Handler) AcceptInvite(ctx *gin.Context) {
	invite, err := h.membership.AcceptInvite(ctx.Request.Context(), ctx.Param("token"))

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.publish(invite.ProjectID, realtime.EventMembersChanged, nil)
	ok(ctx, gin.H{"message": "Invite accepted successfully", "invite": invite.Response()})
}

func (h *Handler) RejectInvite(ctx *gin.Context) {
	invite, err := h.membership.RejectInvite(ctx.Request.Context(), ctx.Param("token"))

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{"message": "Invite rejected successfully", "invite": invite.Response()})
}
