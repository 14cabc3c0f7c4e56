package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-catalog-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware      gin.HandlerFunc
	RequestIDMiddleware gin.HandlerFunc
	SessionMiddleware   gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors, err := CORSMiddleware(ctrl.Config.EnvConfig)
	if err != nil {
		return nil, err
	}

	return &Middlewares{
		CORSMiddleware:      cors,
		RequestIDMiddleware: RequestIDMiddleware(),
		SessionMiddleware:   SessionMiddleware(ctrl.Infra.AuthorizationService, ctrl.Infra.Logger, ctrl.Config.EnvConfig),
	}, nil
}
