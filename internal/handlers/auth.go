package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/monocle-dev/tracker/internal/types"
	"github.com/monocle-dev/tracker/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !h.bind(ctx, &req) {
		return
	}

	_, err := h.credentials.Register(ctx.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		h.fail(ctx, err)
		return
	}

	created(ctx, gin.H{"message": "User registered successfully"})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !h.bind(ctx, &req) {
		return
	}

	result, err := h.credentials.Login(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ok(ctx, gin.H{"token": result.Token, "user": result.User})
}

func (h *Handler) Me(ctx *gin.Context) {
	identity, err := utils.GetCurrentUser(ctx)

	if err != nil {
		h.fail(ctx, apperr.Unauthorized("User not authenticated"))
		return
	}

	ok(ctx, gin.H{"user": types.UserResponse{
		ID:    identity.ID,
		Name:  identity.Name,
		Email: identity.Email,
	}})
}
