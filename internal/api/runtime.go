package api

import (
	"github.com/JaimeStill/directive/internal/config"
	"github.com/JaimeStill/directive/internal/infrastructure"
	"github.com/JaimeStill/directive/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination   pagination.Config
	Instructions config.InstructionsConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Instructions:   cfg.Instructions,
	}
}
