package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/realtime"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/monocle-dev/tracker/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Dependencies struct {
	DB             *gorm.DB
	Credentials    *services.Credentials
	Projects       *services.Projects
	Membership     *services.Membership
	Tickets        *services.Tickets
	Comments       *services.Comments
	Users          *services.Users
	Dashboards     *services.Dashboards
	Hub            *realtime.Hub
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

type Handler struct {
	db          *gorm.DB
	credentials *services.Credentials
	projects    *services.Projects
	membership  *services.Membership
	tickets     *services.Tickets
	comments    *services.Comments
	users       *services.Users
	dashboards  *services.Dashboards
	hub         *realtime.Hub
	upgrader    websocket.Upgrader
	log         logrus.FieldLogger
}

func New(deps Dependencies) *Handler {
	return &Handler{
		db:          deps.DB,
		credentials: deps.Credentials,
		projects:    deps.Projects,
		membership:  deps.Membership,
		tickets:     deps.Tickets,
		comments:    deps.Comments,
		users:       deps.Users,
		dashboards:  deps.Dashboards,
		hub:         deps.Hub,
		upgrader:    newUpgrader(deps.AllowedOrigins),
		log:         deps.Log,
	}
}

func (h *Handler) fail(ctx *gin.Context, err error) {
	utils.Failure(ctx, h.log, err)
}

// bind decodes the JSON body into req and runs its binding rules.
func (h *Handler) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		h.log.WithError(err).Debug("Failed to bind JSON")
		h.fail(ctx, apperr.BadRequest("Invalid request"))
		return false
	}
	return true
}

// caller returns the authenticated user id and the project the access
// middleware resolved.
func (h *Handler) caller(ctx *gin.Context) (ids.ID, services.Access, bool) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		h.fail(ctx, apperr.Unauthorized("User not authenticated"))
		return ids.ID{}, services.Access{}, false
	}

	access, err := utils.GetAccess(ctx)
	if err != nil {
		h.fail(ctx, apperr.Internal("Project not resolved", err))
		return ids.ID{}, services.Access{}, false
	}

	return userID, access, true
}

func (h *Handler) publish(projectID ids.ID, event realtime.EventType, ticketID *ids.ID) {
	if h.hub != nil {
		h.hub.Publish(projectID, event, ticketID)
	}
}

func (h *Handler) disconnect(projectID, userID ids.ID) {
	if h.hub != nil {
		h.hub.Disconnect(projectID, userID)
	}
}

func parseOptionalID(raw, field string) (*ids.ID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := ids.Parse(raw)
	if err != nil {
		return nil, apperr.BadRequest("Invalid " + field)
	}
	return &id, nil
}

func parseRequiredID(raw, field string) (ids.ID, error) {
	if raw == "" {
		return ids.ID{}, apperr.BadRequest(field + " is required")
	}
	id, err := ids.Parse(raw)
	if err != nil {
		return ids.ID{}, apperr.BadRequest("Invalid " + field)
	}
	return id, nil
}

func ok(ctx *gin.Context, payload gin.H) {
	utils.Success(ctx, http.StatusOK, payload)
}

func created(ctx *gin.Context, payload gin.H) {
	utils.Success(ctx, http.StatusCreated, payload)
}
