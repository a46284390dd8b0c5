package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/monocle-dev/tracker/internal/utils"
	"github.com/sirupsen/logrus"
)

// ProjectAccess resolves the project named by :projectId or :ticketId and
// lets only its owner and members through. Must run after Protect.
func ProjectAccess(guard *services.Guard, log logrus.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			utils.Abort(ctx, log, apperr.Unauthorized("User not authenticated"))
			return
		}

		var scope services.Scope

		if scope.ProjectID, err = utils.OptionalParamID(ctx, "projectId"); err != nil {
			utils.Abort(ctx, log, err)
			return
		}

		if scope.TicketID, err = utils.OptionalParamID(ctx, "ticketId"); err != nil {
			utils.Abort(ctx, log, err)
			return
		}

		access, err := guard.Resolve(ctx.Request.Context(), userID, scope)

		if err != nil {
			utils.Abort(ctx, log, err)
			return
		}

		utils.SetAccess(ctx, access)
		ctx.Next()
	}
}
