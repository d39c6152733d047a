package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config is the immutable GlobalConfiguration record threaded through
// engine construction (spec.md §9). It is built once by Load and never
// mutated afterward.
type Config struct {
	Tolerance   ToleranceConfig
	Simplex     SimplexConfig
	Tightening  TighteningConfig
	SMT         SMTConfig
	SoI         SoIConfig
	Restoration RestorationConfig
	LPBackend   LPBackendConfig
	Stats       StatsConfig
	Cache       CacheConfig
	Logging     LoggingConfig
	Engine      EngineConfig
}

// ToleranceConfig groups the epsilons invariants I1-I5 are checked
// against (spec.md §3, §8).
type ToleranceConfig struct {
	BoundTolerance     float64 // lb <= ub + ε slack (I3)
	PivotTolerance     float64 // reduced-cost / ratio-test epsilon
	DegradationEpsilon float64 // ||Ax - b|| drift considered "no degradation"
}

// SimplexConfig groups the tableau's pivot-quality knobs (spec.md §4.1).
type SimplexConfig struct {
	MaxSimplexPivotSearchIterations int
	AcceptableSimplexPivotThreshold float64
	MaxSimplexIterations            int
}

// TighteningConfig selects the row bound tightener's strategy
// (spec.md §4.3).
type TighteningConfig struct {
	Strategy                                   string // "explicit", "implicit", "matrix"
	Saturate                                   bool
	BoundTighteningOnConstraintMatrixFrequency int
}

// SMTConfig groups the DPLL-style branching knobs (spec.md §4.6).
type SMTConfig struct {
	BranchingStrategy                string // "earliest-relu", "polarity", "largest-interval", "pseudo-impact", "auto"
	PolarityCandidatesThreshold      int
	IntervalSplittingThreshold       int
	ScoreBumpForPLConstraintsNotInSoI float64
}

// SoIConfig groups the Sum-of-Infeasibilities local-search knobs
// (spec.md §4.8).
type SoIConfig struct {
	Enabled                     bool
	MaxProposedUpdates          int
	RejectionsBeforeSplit       int
	AnnealingInitialTemperature float64
	AnnealingCoolingRate        float64
}

// RestorationConfig groups the precision restorer's knobs
// (spec.md §4.7).
type RestorationConfig struct {
	DegradationThreshold float64
	DefaultStorageLevel  string // "none", "structure", "full"
}

// LPBackendConfig configures the external LP backend adapter
// (spec.md §6).
type LPBackendConfig struct {
	Enabled    bool // false => native simplex only
	NumWorkers int
	TimeLimit  int // seconds, 0 = unbounded
}

// StatsConfig configures the statistics sink (gorm-backed).
type StatsConfig struct {
	Driver       string // "sqlite" or "postgres"
	DSN          string
	FlushSeconds int
}

// CacheConfig configures the redis-backed split-and-conquer result cache.
type CacheConfig struct {
	Enabled bool
	Addr    string
	DB      int
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// EngineConfig groups the outer engine-driver knobs (spec.md §4.9, §5).
type EngineConfig struct {
	TimeoutSeconds int // 0 = unbounded (spec.md §8)
	WarmStart      bool
}

// Load initializes and loads configuration using Viper, the way the
// teacher's internal/config/config.go does.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: .env file not found, using environment variables and defaults")
		} else {
			log.Printf("Error reading config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}

	return &Config{
		Tolerance: ToleranceConfig{
			BoundTolerance:     viper.GetFloat64("BOUND_TOLERANCE"),
			PivotTolerance:     viper.GetFloat64("PIVOT_TOLERANCE"),
			DegradationEpsilon: viper.GetFloat64("DEGRADATION_EPSILON"),
		},
		Simplex: SimplexConfig{
			MaxSimplexPivotSearchIterations: viper.GetInt("MAX_SIMPLEX_PIVOT_SEARCH_ITERATIONS"),
			AcceptableSimplexPivotThreshold: viper.GetFloat64("ACCEPTABLE_SIMPLEX_PIVOT_THRESHOLD"),
			MaxSimplexIterations:            viper.GetInt("MAX_SIMPLEX_ITERATIONS"),
		},
		Tightening: TighteningConfig{
			Strategy: viper.GetString("TIGHTENING_STRATEGY"),
			Saturate: viper.GetBool("TIGHTENING_SATURATE"),
			BoundTighteningOnConstraintMatrixFrequency: viper.GetInt("BOUND_TIGHTENING_ON_CONSTRAINT_MATRIX_FREQUENCY"),
		},
		SMT: SMTConfig{
			BranchingStrategy:                 viper.GetString("BRANCHING_STRATEGY"),
			PolarityCandidatesThreshold:       viper.GetInt("POLARITY_CANDIDATES_THRESHOLD"),
			IntervalSplittingThreshold:        viper.GetInt("INTERVAL_SPLITTING_THRESHOLD"),
			ScoreBumpForPLConstraintsNotInSoI: viper.GetFloat64("SCORE_BUMP_FOR_PL_CONSTRAINTS_NOT_IN_SOI"),
		},
		SoI: SoIConfig{
			Enabled:                     viper.GetBool("SOI_ENABLED"),
			MaxProposedUpdates:          viper.GetInt("SOI_MAX_PROPOSED_UPDATES"),
			RejectionsBeforeSplit:       viper.GetInt("SOI_REJECTIONS_BEFORE_SPLIT"),
			AnnealingInitialTemperature: viper.GetFloat64("SOI_ANNEALING_INITIAL_TEMPERATURE"),
			AnnealingCoolingRate:        viper.GetFloat64("SOI_ANNEALING_COOLING_RATE"),
		},
		Restoration: RestorationConfig{
			DegradationThreshold: viper.GetFloat64("RESTORATION_DEGRADATION_THRESHOLD"),
			DefaultStorageLevel:  viper.GetString("RESTORATION_STORAGE_LEVEL"),
		},
		LPBackend: LPBackendConfig{
			Enabled:    viper.GetBool("LP_BACKEND_ENABLED"),
			NumWorkers: viper.GetInt("LP_BACKEND_NUM_WORKERS"),
			TimeLimit:  viper.GetInt("LP_BACKEND_TIME_LIMIT"),
		},
		Stats: StatsConfig{
			Driver:       viper.GetString("STATS_DRIVER"),
			DSN:          viper.GetString("STATS_DSN"),
			FlushSeconds: viper.GetInt("STATS_FLUSH_SECONDS"),
		},
		Cache: CacheConfig{
			Enabled: viper.GetBool("CACHE_ENABLED"),
			Addr:    viper.GetString("CACHE_ADDR"),
			DB:      viper.GetInt("CACHE_DB"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Engine: EngineConfig{
			TimeoutSeconds: viper.GetInt("ENGINE_TIMEOUT_SECONDS"),
			WarmStart:      viper.GetBool("ENGINE_WARM_START"),
		},
	}
}

// setDefaults sets default values mirroring the GlobalConfiguration
// constants of spec.md §4 and §9.
func setDefaults() {
	viper.SetDefault("BOUND_TOLERANCE", 1e-9)
	viper.SetDefault("PIVOT_TOLERANCE", 1e-9)
	viper.SetDefault("DEGRADATION_EPSILON", 1e-6)

	viper.SetDefault("MAX_SIMPLEX_PIVOT_SEARCH_ITERATIONS", 10)
	viper.SetDefault("ACCEPTABLE_SIMPLEX_PIVOT_THRESHOLD", 1e-5)
	viper.SetDefault("MAX_SIMPLEX_ITERATIONS", 20000)

	viper.SetDefault("TIGHTENING_STRATEGY", "implicit")
	viper.SetDefault("TIGHTENING_SATURATE", true)
	viper.SetDefault("BOUND_TIGHTENING_ON_CONSTRAINT_MATRIX_FREQUENCY", 100)

	viper.SetDefault("BRANCHING_STRATEGY", "auto")
	viper.SetDefault("POLARITY_CANDIDATES_THRESHOLD", 5)
	viper.SetDefault("INTERVAL_SPLITTING_THRESHOLD", 10)
	viper.SetDefault("SCORE_BUMP_FOR_PL_CONSTRAINTS_NOT_IN_SOI", 5.0)

	viper.SetDefault("SOI_ENABLED", true)
	viper.SetDefault("SOI_MAX_PROPOSED_UPDATES", 5)
	viper.SetDefault("SOI_REJECTIONS_BEFORE_SPLIT", 10)
	viper.SetDefault("SOI_ANNEALING_INITIAL_TEMPERATURE", 20.0)
	viper.SetDefault("SOI_ANNEALING_COOLING_RATE", 0.95)

	viper.SetDefault("RESTORATION_DEGRADATION_THRESHOLD", 1e-4)
	viper.SetDefault("RESTORATION_STORAGE_LEVEL", "structure")

	viper.SetDefault("LP_BACKEND_ENABLED", false)
	viper.SetDefault("LP_BACKEND_NUM_WORKERS", 1)
	viper.SetDefault("LP_BACKEND_TIME_LIMIT", 0)

	viper.SetDefault("STATS_DRIVER", "sqlite")
	viper.SetDefault("STATS_DSN", "plverify_stats.db")
	viper.SetDefault("STATS_FLUSH_SECONDS", 30)

	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("CACHE_ADDR", "localhost:6379")
	viper.SetDefault("CACHE_DB", 0)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")

	viper.SetDefault("ENGINE_TIMEOUT_SECONDS", 0)
	viper.SetDefault("ENGINE_WARM_START", true)
}
