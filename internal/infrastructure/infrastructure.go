// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, cache, lexicon) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/directive/internal/config"
	"github.com/JaimeStill/directive/pkg/cache"
	"github.com/JaimeStill/directive/pkg/database"
	"github.com/JaimeStill/directive/pkg/lexicon"
	"github.com/JaimeStill/directive/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, the shared cache, and the contradiction lexicon.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Cache     cache.System
	Lexicon   *lexicon.Holder

	watcher *lexicon.Watcher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// A configured lexicon file is loaded here so a bad file fails startup.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	holder := lexicon.NewHolder(nil)
	var watcher *lexicon.Watcher

	if path := cfg.Instructions.LexiconPath; path != "" {
		table, err := lexicon.Load(path)
		if err != nil {
			return nil, fmt.Errorf("lexicon init failed: %w", err)
		}
		holder.Store(table)
		logger.Info("lexicon loaded", "path", path, "pairs", len(table.Pairs))

		if cfg.Instructions.LexiconWatch {
			watcher = lexicon.NewWatcher(path, holder, logger)
		}
	}

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Cache:     cache.New(&cfg.Cache, logger),
		Lexicon:   holder,
		watcher:   watcher,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and cache hooks are registered for startup and shutdown coordination;
// the lexicon watcher runs until shutdown when enabled.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	if i.watcher != nil {
		if err := i.watcher.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("lexicon watcher start failed: %w", err)
		}
	}
	return nil
}
