package middlewares

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/utils"
)

// CORSMiddleware allows the comma separated ALLOWED_DOMAINS plus any https
// subdomain of GLOBAL_DOMAIN. Without either every origin is allowed.
func CORSMiddleware(cfg *config.EnvConfig) (gin.HandlerFunc, error) {
	var origins []string
	for _, origin := range strings.Split(cfg.CORS.AllowDomains, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", utils.SessionHeader, RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	globalDomain := strings.TrimSpace(cfg.CORS.GlobalDomain)
	switch {
	case globalDomain != "":
		corsConfig.AllowOrigins = origins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := strings.TrimPrefix(origin, "https://")
			return host != origin && (host == globalDomain || strings.HasSuffix(host, "."+globalDomain))
		}
	case len(origins) == 0 || (len(origins) == 1 && origins[0] == "*"):
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	default:
		corsConfig.AllowOrigins = origins
	}

	if err := corsConfig.Validate(); err != nil {
		return nil, err
	}
	return cors.New(corsConfig), nil
}
