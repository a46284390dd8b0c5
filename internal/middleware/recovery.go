package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery turns a panic into a 500 response and logs its stack.
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, recovered interface{}) {
		log.WithFields(logrus.Fields{
			"panic":  recovered,
			"method": ctx.Request.Method,
			"path":   ctx.Request.URL.Path,
			"stack":  string(debug.Stack()),
		}).Error("Recovered from panic")

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error", "success": false})
	})
}
