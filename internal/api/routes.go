package api

import (
	"net/http"

	"github.com/JaimeStill/directive/internal/config"
	"github.com/JaimeStill/directive/pkg/routes"
)

func routeGroups(domain *Domain, cfg *config.Config) []routes.Group {
	return []routes.Group{
		domain.Instructions.Handler().Routes(),
		domain.Evaluation.Handler(cfg.API.MaxBodySizeBytes()).Routes(),
		domain.Control.Handler().Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, groups []routes.Group) {
	routes.Register(mux, groups...)
}
