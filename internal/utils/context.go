package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/monocle-dev/tracker/internal/services"
	"github.com/monocle-dev/tracker/internal/types"
)

var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrNoProject        = errors.New("project not resolved for this request")
)

func SetCurrentUser(ctx *gin.Context, identity auth.Identity) {
	ctx.Set(types.ContextUserKey, identity)
}

func GetCurrentUser(ctx *gin.Context) (auth.Identity, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return auth.Identity{}, ErrNotAuthenticated
	}

	identity, ok := user.(auth.Identity)

	if !ok {
		return auth.Identity{}, ErrNotAuthenticated
	}

	return identity, nil
}

func GetCurrentUserID(ctx *gin.Context) (ids.ID, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return ids.ID{}, err
	}

	return user.ID, nil
}

func SetAccess(ctx *gin.Context, access services.Access) {
	ctx.Set(types.ContextProjectKey, access)
}

// GetAccess returns the project the access middleware loaded.
func GetAccess(ctx *gin.Context) (services.Access, error) {
	value, exists := ctx.Get(types.ContextProjectKey)

	if !exists {
		return services.Access{}, ErrNoProject
	}

	access, ok := value.(services.Access)

	if !ok {
		return services.Access{}, ErrNoProject
	}

	return access, nil
}
