package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/db"
)

const healthTimeout = 2 * time.Second

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := db.Ping(ctx, h.db); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"message":   "Database is unreachable",
			"timestamp": time.Now().Format(time.RFC3339),
			"success":   false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Tracker is running",
		"timestamp": time.Now().Format(time.RFC3339),
		"success":   true,
	})
}
