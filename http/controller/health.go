package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/utils"
)

func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	sqlDB, err := ctrl.Infra.Postgres.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Health] Database unreachable")
		utils.JSONError(c, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	utils.JSON200(c, gin.H{"status": "ok"})
}
