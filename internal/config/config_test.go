package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "implicit", cfg.Tightening.Strategy)
	assert.Equal(t, "auto", cfg.SMT.BranchingStrategy)
	assert.True(t, cfg.SoI.Enabled)
	assert.Equal(t, 0, cfg.Engine.TimeoutSeconds)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	os.Setenv("BRANCHING_STRATEGY", "polarity")
	os.Setenv("ENGINE_TIMEOUT_SECONDS", "30")
	defer os.Unsetenv("BRANCHING_STRATEGY")
	defer os.Unsetenv("ENGINE_TIMEOUT_SECONDS")

	cfg := Load()

	assert.Equal(t, "polarity", cfg.SMT.BranchingStrategy)
	assert.Equal(t, 30, cfg.Engine.TimeoutSeconds)
}

func TestValidateConfigRejectsUnknownStrategy(t *testing.T) {
	Load()
	os.Setenv("TIGHTENING_STRATEGY", "bogus")
	defer os.Unsetenv("TIGHTENING_STRATEGY")
	Load()

	err := ValidateConfig()
	assert.Error(t, err)
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	os.Unsetenv("TIGHTENING_STRATEGY")
	os.Unsetenv("BRANCHING_STRATEGY")
	os.Unsetenv("STATS_DRIVER")
	Load()

	assert.NoError(t, ValidateConfig())
}

func TestIsDevelopment(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("LOG_LEVEL")
	Load()
	assert.True(t, IsDevelopment())

	os.Setenv("LOG_LEVEL", "info")
	Load()
	assert.False(t, IsDevelopment())
}
