package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/entity"
)

const userContextKey = "catalog_user"

func InjectUserToContext(c *gin.Context, user entity.AuthenticatedUser) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the identity stored by the session middleware, or the
// anonymous user when none was stored.
func CurrentUser(c *gin.Context) entity.AuthenticatedUser {
	if value, ok := c.Get(userContextKey); ok {
		if user, ok := value.(entity.AuthenticatedUser); ok {
			return user
		}
	}
	return entity.AnonymousUser
}
