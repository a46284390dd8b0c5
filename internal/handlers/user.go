package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/types"
)

func (h *Handler) SearchUsers(ctx *gin.Context) {
	users, err := h.users.Search(ctx.Request.Context(), ctx.Query("query"))

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, user.Public())
	}

	ok(ctx, gin.H{"users": response})
}
