package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/sirupsen/logrus"
)

// Success writes payload with success:true merged in.
func Success(ctx *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	ctx.JSON(status, body)
}

// Failure writes {message, success:false} for err. Unclassified errors are
// logged and answered with a generic message.
func Failure(ctx *gin.Context, log logrus.FieldLogger, err error) {
	status, message := describe(ctx, log, err)
	ctx.JSON(status, gin.H{"message": message, "success": false})
}

// Abort is Failure for middleware: later handlers do not run.
func Abort(ctx *gin.Context, log logrus.FieldLogger, err error) {
	status, message := describe(ctx, log, err)
	ctx.AbortWithStatusJSON(status, gin.H{"message": message, "success": false})
}

func describe(ctx *gin.Context, log logrus.FieldLogger, err error) (int, string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("Internal server error", err)
	}

	if appErr.Kind == apperr.KindInternal {
		log.WithError(err).WithFields(logrus.Fields{
			"method": ctx.Request.Method,
			"path":   ctx.Request.URL.Path,
		}).Error(appErr.Message)
		return http.StatusInternalServerError, appErr.Message
	}

	return appErr.HTTPStatus(), appErr.Message
}
