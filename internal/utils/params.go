package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/ids"
)

// ParamID parses the named path parameter as an id.
func ParamID(ctx *gin.Context, name string) (ids.ID, error) {
	raw := ctx.Param(name)
	if raw == "" {
		return ids.ID{}, apperr.BadRequest(name + " is required")
	}

	id, err := ids.Parse(raw)
	if err != nil {
		return ids.ID{}, apperr.BadRequest("Invalid " + name)
	}

	return id, nil
}

// OptionalParamID is ParamID for parameters a route may not declare.
func OptionalParamID(ctx *gin.Context, name string) (*ids.ID, error) {
	if ctx.Param(name) == "" {
		return nil, nil
	}

	id, err := ParamID(ctx, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
