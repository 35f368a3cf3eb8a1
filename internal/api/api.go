// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/directive/internal/config"
	"github.com/JaimeStill/directive/internal/infrastructure"
	"github.com/JaimeStill/directive/pkg/auth"
	"github.com/JaimeStill/directive/pkg/middleware"
	"github.com/JaimeStill/directive/pkg/module"
	"github.com/JaimeStill/directive/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
// The OpenAPI document is public; every other route passes through auth
// and the per-caller rate limit.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)
	domain.Recorder.Start(runtime.Lifecycle)

	groups := routeGroups(domain, cfg)

	spec, err := openapi.MarshalJSON(buildSpec(cfg, groups))
	if err != nil {
		return nil, fmt.Errorf("openapi spec: %w", err)
	}

	protected := middleware.New()
	protected.Use(auth.New(&cfg.Auth, runtime.Logger))
	protected.Use(middleware.RateLimit(&cfg.API.RateLimit, callerKey, runtime.Logger))

	domainMux := http.NewServeMux()
	registerRoutes(domainMux, groups)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
	mux.Handle("/", protected.Apply(domainMux))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}

// callerKey buckets rate limits by authenticated user, falling back to the
// remote address.
func callerKey(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return "user:" + user
	}
	return "addr:" + r.RemoteAddr
}
