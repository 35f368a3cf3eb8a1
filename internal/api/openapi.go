package api

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/directive/internal/config"
	"github.com/JaimeStill/directive/internal/control"
	"github.com/JaimeStill/directive/internal/evaluation"
	"github.com/JaimeStill/directive/internal/instructions"
	"github.com/JaimeStill/directive/pkg/openapi"
	"github.com/JaimeStill/directive/pkg/routes"
)

// buildSpec documents every route that carries an operation. Paths are
// rooted at the API base path.
func buildSpec(cfg *config.Config, groups []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(instructions.Spec.Schemas())
	spec.Components.AddSchemas(evaluation.Spec.Schemas())
	spec.Components.AddSchemas(control.Spec.Schemas())

	routes.Walk(func(path string, route routes.Route) {
		if route.OpenAPI == nil {
			return
		}
		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}
		switch strings.ToUpper(route.Method) {
		case http.MethodGet:
			item.Get = route.OpenAPI
		case http.MethodPost:
			item.Post = route.OpenAPI
		case http.MethodPut:
			item.Put = route.OpenAPI
		case http.MethodDelete:
			item.Delete = route.OpenAPI
		}
	}, groups...)

	return spec
}
