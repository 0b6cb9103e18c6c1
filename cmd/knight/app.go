package main

import (
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/knight/internal/config"
	"github.com/cory-johannsen/knight/internal/game/derive"
	"github.com/cory-johannsen/knight/internal/game/dice"
	"github.com/cory-johannsen/knight/internal/game/formula"
	"github.com/cory-johannsen/knight/internal/observability"
	"github.com/cory-johannsen/knight/internal/scripting"
)

// App holds the wired services every subcommand runs against.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Preparer  *derive.Preparer
	Evaluator *formula.Evaluator
}

var appSet = wire.NewSet(
	provideLogger,
	dice.NewLoggedRoller,
	provideScripts,
	providePreparer,
	provideEvaluator,
	newApp,
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// provideScripts loads the configured Lua scripts. An empty scripts
// directory yields a Manager with no hooks.
func provideScripts(cfg config.Config, logger *zap.Logger) (*scripting.Manager, func(), error) {
	m := scripting.NewManager(logger, cfg.Scripting.InstructionLimit)
	if cfg.Content.ScriptsDir != "" {
		if err := m.Load(cfg.Content.ScriptsDir); err != nil {
			m.Close()
			return nil, nil, err
		}
	}
	return m, m.Close, nil
}

func providePreparer(logger *zap.Logger, scripts *scripting.Manager) (*derive.Preparer, error) {
	hooks := scripts.Hooks()
	logger.Debug("phase hooks registered", zap.Int("count", len(hooks)))
	return derive.NewPreparer(logger, hooks...)
}

func provideEvaluator(roller *dice.Roller, cfg config.Config) (*formula.Evaluator, error) {
	return formula.NewEvaluator(roller, cfg.Initiative)
}

func newApp(cfg config.Config, logger *zap.Logger, preparer *derive.Preparer, evaluator *formula.Evaluator) *App {
	return &App{Config: cfg, Logger: logger, Preparer: preparer, Evaluator: evaluator}
}
