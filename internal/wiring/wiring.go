// Package wiring assembles config, logger, statistics sink, cache, and
// the engine driver into an fx app, replacing the teacher's
// internal/fx (which wired a gin HTTP server plus its own gorm
// database and middleware stack). Grounded directly on the teacher's
// CoreModule/NewLogger/NewDatabase shape in internal/fx/core.go:
// same fx.Module/fx.Provide structure, same "build logger first"
// ordering, generalized from an HTTP server's dependency graph to the
// solver's.
package wiring

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"plverify/internal/cache"
	"plverify/internal/config"
	"plverify/internal/logger"
	"plverify/internal/solver/engine"
	"plverify/internal/solver/smt"
	"plverify/internal/solver/tableau"
	"plverify/internal/solver/tightening"
	"plverify/internal/stats"
)

// CoreModule provides the process-wide dependencies every CLI command
// needs: configuration, logger, statistics sink, and optional cache.
var CoreModule = fx.Module("core",
	fx.Provide(
		config.Load,
		NewLogger,
		NewStatsSink,
		NewCache,
		NewEngineConfig,
	),
)

// NewLogger builds the zap logger from the loaded configuration.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("wiring: building logger: %w", err)
	}
	log.Info("logger initialized", zap.String("level", cfg.Logging.Level), zap.String("format", cfg.Logging.Format))
	return log, nil
}

// NewStatsSink opens the statistics sink and starts its periodic
// flush, if configured.
func NewStatsSink(cfg *config.Config, log *zap.Logger) (*stats.Sink, error) {
	sink, err := stats.Open(cfg.Stats.Driver, cfg.Stats.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("wiring: opening statistics sink: %w", err)
	}
	if err := sink.StartPeriodicFlush(cfg.Stats.FlushSeconds); err != nil {
		return nil, fmt.Errorf("wiring: scheduling stats flush: %w", err)
	}
	return sink, nil
}

// NewCache constructs the split-and-conquer result cache, or nil if
// disabled.
func NewCache(cfg *config.Config, log *zap.Logger) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return cache.New(cfg.Cache.Addr, cfg.Cache.DB, log)
}

// NewEngineConfig translates the viper-backed config.Config into the
// plain engine.Config the solver's core packages take, keeping the
// engine package itself free of a viper dependency.
func NewEngineConfig(cfg *config.Config) engine.Config {
	level := tableau.StoreStructure
	switch cfg.Restoration.DefaultStorageLevel {
	case "none":
		level = tableau.StoreNone
	case "full":
		level = tableau.StoreFull
	}

	return engine.Config{
		PivotTolerance:                   cfg.Tolerance.PivotTolerance,
		DegradationEpsilon:               cfg.Tolerance.DegradationEpsilon,
		TighteningStrategy:               tightening.Strategy(cfg.Tightening.Strategy),
		TighteningMatrixFrequency:        cfg.Tightening.BoundTighteningOnConstraintMatrixFrequency,
		BranchingStrategy:                smt.Strategy(cfg.SMT.BranchingStrategy),
		PolarityCandidatesThreshold:      cfg.SMT.PolarityCandidatesThreshold,
		IntervalSplittingThreshold:       cfg.SMT.IntervalSplittingThreshold,
		ScoreBump:                        cfg.SMT.ScoreBumpForPLConstraintsNotInSoI,
		SoIEnabled:                       cfg.SoI.Enabled,
		SoIMaxProposedUpdates:            cfg.SoI.MaxProposedUpdates,
		SoIRejectionsBeforeSplit:         cfg.SoI.RejectionsBeforeSplit,
		SoIAnnealingInitialTemp:          cfg.SoI.AnnealingInitialTemperature,
		SoIAnnealingCoolingRate:          cfg.SoI.AnnealingCoolingRate,
		RestorationDegradationThreshold:  cfg.Restoration.DegradationThreshold,
		RestorationDefaultLevel:          level,
		TimeoutSeconds:                   cfg.Engine.TimeoutSeconds,
	}
}
