package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/handlers"
	"github.com/monocle-dev/tracker/internal/middleware"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Handler        *handlers.Handler
	Issuer         *auth.TokenIssuer
	Guard          *services.Guard
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	h := opts.Handler

	r.Use(middleware.Recovery(opts.Log))
	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	protect := middleware.Protect(opts.Issuer, opts.Log)
	access := middleware.ProjectAccess(opts.Guard, opts.Log)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws/:projectId", protect, access, h.WebSocket)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", protect, h.Me)
		}

		api.GET("/dashboard", protect, h.GetDashboard)
		api.GET("/users/search", protect, h.SearchUsers)

		projects := api.Group("/projects", protect)
		{
			projects.GET("", h.ListProjects)
			projects.POST("", h.CreateProject)
			projects.GET("/:projectId", access, h.GetProject)
			projects.PUT("/:projectId", access, h.UpdateProject)
			projects.DELETE("/:projectId", access, h.DeleteProject)

			projects.POST("/:projectId/add-member", access, h.AddMember)
			projects.POST("/:projectId/invite-member", access, h.InviteMember)
			projects.POST("/:projectId/remove-member", access, h.RemoveMember)
		}

		invites := api.Group("/invites")
		{
			invites.POST("/add/:projectId", protect, access, h.InviteMember)
			invites.GET("/all/:projectId", protect, access, h.ListInvites)

			// The token is the credential.
			invites.PATCH("/accept/:token", h.AcceptInvite)
			invites.PATCH("/reject/:token", h.RejectInvite)
		}

		tickets := api.Group("/tickets", protect, access)
		{
			tickets.POST("/:projectId", h.CreateTicket)
			tickets.GET("/:projectId", h.ListTickets)
			tickets.GET("/:projectId/:ticketId", h.GetTicket)
			tickets.PATCH("/:projectId/:ticketId", h.UpdateTicket)
			tickets.DELETE("/:projectId/:ticketId", h.DeleteTicket)

			tickets.PATCH("/:projectId/:ticketId/assign", h.AssignTicket)
			tickets.PATCH("/:projectId/:ticketId/unassign", h.UnassignTicket)
			tickets.PATCH("/:projectId/:ticketId/change-assignee", h.ChangeAssignee)
		}

		comments := api.Group("/comments", protect, access)
		{
			comments.POST("/:ticketId", h.AddComment)
			comments.GET("/:ticketId", h.ListComments)
		}
	}

	return r
}
