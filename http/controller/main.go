package controller

import (
	"github.com/tnqbao/gau-catalog-service/config"
	"github.com/tnqbao/gau-catalog-service/infra"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/rights"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Rights     *rights.Resolver
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Rights:     rights.NewResolver(repo.GrantRepo),
	}
}
