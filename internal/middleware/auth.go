package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/utils"
	"github.com/sirupsen/logrus"
)

// bearerToken reads the Authorization header. Browsers cannot set headers
// on websocket upgrades, so those may pass ?token= instead.
func bearerToken(ctx *gin.Context) (string, error) {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		if ctx.IsWebsocket() {
			if token := ctx.Query("token"); token != "" {
				return token, nil
			}
		}
		return "", apperr.Unauthorized("Authorization token is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("Authorization header format must be Bearer {token}")
	}

	return strings.TrimSpace(parts[1]), nil
}

// Protect rejects requests without a valid bearer token and stores the
// token's identity on the context.
func Protect(issuer *auth.TokenIssuer, log logrus.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := bearerToken(ctx)

		if err != nil {
			utils.Abort(ctx, log, err)
			return
		}

		identity, err := issuer.Verify(token)

		if err != nil {
			utils.Abort(ctx, log, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		utils.SetCurrentUser(ctx, identity)
		ctx.Next()
	}
}
