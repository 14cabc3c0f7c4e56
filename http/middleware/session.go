package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/infra"
	"github.com/tnqbao/gau-catalog-service/utils"
)

// SessionMiddleware resolves the caller from its session token. With sessions
// disabled every caller is the anonymous user.
func SessionMiddleware(authService *infra.AuthorizationService, logger *infra.LoggerClient, config *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Session.Required {
			utils.InjectUserToContext(c, entity.AnonymousUser)
			c.Next()
			return
		}

		token := utils.ExtractToken(c)
		if token == "" {
			utils.JSON401(c, "Session id is required")
			return
		}

		ctx := c.Request.Context()
		user, err := authService.ResolveSession(ctx, token)
		if err != nil {
			logger.WarningWithContextf(ctx, "[Session] Rejected session: %v", err)
			utils.JSON401(c, "Invalid or expired session")
			return
		}

		utils.InjectUserToContext(c, user)
		c.Next()
	}
}
