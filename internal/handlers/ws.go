package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			// Same host is always fine.
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// WebSocket streams change notifications for one project. Protect and
// ProjectAccess have already run.
func (h *Handler) WebSocket(ctx *gin.Context) {
	userID, access, valid := h.caller(ctx)
	if !valid {
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.hub.Serve(access.Project.ID, userID, conn)
}
