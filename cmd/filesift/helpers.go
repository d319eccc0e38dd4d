package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/filesift/filesift/internal/config"
	"github.com/filesift/filesift/internal/engine"
	"github.com/filesift/filesift/internal/grouping"
	"github.com/filesift/filesift/internal/model"
	"github.com/filesift/filesift/internal/organizer"
	"github.com/filesift/filesift/internal/rules"
	"github.com/filesift/filesift/internal/service"
	"github.com/filesift/filesift/internal/storage"
)

// loadSettings returns the merged, validated configuration.
func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

// initLedger opens the history database with proper path expansion and
// runs migrations.
func initLedger(ctx context.Context, settings *config.Settings) (service.Ledger, error) {
	dbPath := config.ExpandPath(settings.Database.Path)

	ledger, err := storage.NewSQLiteLedger(dbPath, storage.DefaultCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := ledger.Migrate(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return ledger, nil
}

// newResolver builds the rule resolver described by the configuration.
func newResolver(settings *config.Settings) *rules.Resolver {
	opts := rules.Options{
		Rules:       settings.RuleSet(),
		CustomRules: settings.CustomRules,
		Granularity: settings.DateGranularity(),
	}
	if settings.HierarchyMode {
		cfg := rules.DefaultHierarchyConfig()
		cfg.Granularity = settings.DateGranularity()
		opts.Hierarchy = rules.NewDetailedHierarchy(cfg)
	}
	return rules.NewResolver(opts)
}

// buildEngine wires the full classification pipeline from configuration.
func buildEngine(settings *config.Settings, ledger service.Ledger, progress func(done, total int)) *engine.Engine {
	grouperCfg := grouping.DefaultConfig()
	grouperCfg.SkipMarker = settings.SkipMarker

	return engine.New(engine.Config{
		Resolver:   newResolver(settings),
		Conflicts:  organizer.NewConflicts(),
		Executor:   organizer.NewFileExecutor(config.ExpandPath(settings.TrashDir)),
		Ledger:     ledger,
		Grouper:    grouping.New(grouperCfg),
		Rules:      settings.RuleSet(),
		SkipMarker: settings.SkipMarker,
		Progress:   progress,
	})
}

// operationFromFlag picks the per-command operation override, falling back
// to the configured default.
func operationFromFlag(settings *config.Settings, flag string) (model.OperationKind, error) {
	if flag == "" {
		return settings.OperationKind(), nil
	}
	kind := model.OperationKind(flag)
	if !kind.Valid() {
		return "", fmt.Errorf("invalid operation %q (use move, copy or link)", flag)
	}
	return kind, nil
}
