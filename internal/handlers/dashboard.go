package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/utils"
)

func (h *Handler) GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		h.fail(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	dashboard, err := h.dashboards.Build(ctx.Request.Context(), userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{
		"stats":      dashboard.Stats,
		"activeWork": ticketResponses(dashboard.ActiveWork),
	})
}
