package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// GetStringConfig returns a string configuration value.
func GetStringConfig(key string, defaultValue ...string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetIntConfig returns an integer configuration value.
func GetIntConfig(key string, defaultValue ...int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetBoolConfig returns a boolean configuration value.
func GetBoolConfig(key string, defaultValue ...bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// ValidateConfig validates required configuration values and reports
// every invalid one. Load, the wiring and the CLI commands do not call
// it, so a solve runs with the loaded values whether or not they pass.
func ValidateConfig() error {
	var problems []string

	if GetIntConfig("MAX_SIMPLEX_PIVOT_SEARCH_ITERATIONS") <= 0 {
		problems = append(problems, "MAX_SIMPLEX_PIVOT_SEARCH_ITERATIONS must be positive")
	}
	strategy := GetStringConfig("TIGHTENING_STRATEGY")
	switch strategy {
	case "explicit", "implicit", "matrix":
	default:
		problems = append(problems, fmt.Sprintf("unknown TIGHTENING_STRATEGY %q", strategy))
	}
	branching := GetStringConfig("BRANCHING_STRATEGY")
	switch branching {
	case "earliest-relu", "polarity", "largest-interval", "pseudo-impact", "auto":
	default:
		problems = append(problems, fmt.Sprintf("unknown BRANCHING_STRATEGY %q", branching))
	}
	driver := GetStringConfig("STATS_DRIVER")
	if driver != "sqlite" && driver != "postgres" {
		problems = append(problems, fmt.Sprintf("unknown STATS_DRIVER %q", driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// PrintConfig prints the effective configuration.
func PrintConfig() {
	log.Println("=== Configuration ===")
	log.Printf("Tightening strategy: %s (saturate=%v)", GetStringConfig("TIGHTENING_STRATEGY"), GetBoolConfig("TIGHTENING_SATURATE"))
	log.Printf("Branching strategy: %s", GetStringConfig("BRANCHING_STRATEGY"))
	log.Printf("SoI enabled: %v", GetBoolConfig("SOI_ENABLED"))
	log.Printf("LP backend enabled: %v (workers=%d)", GetBoolConfig("LP_BACKEND_ENABLED"), GetIntConfig("LP_BACKEND_NUM_WORKERS"))
	log.Printf("Stats: %s (%s)", GetStringConfig("STATS_DRIVER"), GetStringConfig("STATS_DSN"))
	log.Printf("Cache enabled: %v", GetBoolConfig("CACHE_ENABLED"))
	log.Printf("Engine timeout (s): %d", GetIntConfig("ENGINE_TIMEOUT_SECONDS"))
	log.Println("======================")
}

// IsDevelopment returns true when LOG_LEVEL requests verbose diagnostics.
func IsDevelopment() bool {
	return GetStringConfig("LOG_LEVEL") == "debug"
}
