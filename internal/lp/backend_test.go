package lp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBackend struct{ Backend }

func (fakeBackend) Name() string { return "fake" }

func TestNameUsesOptionalNamedInterface(t *testing.T) {
	assert.Equal(t, "fake", Name(fakeBackend{}))
}

type unnamedBackend struct{ Backend }

func TestNameFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, "unknown", Name(unnamedBackend{}))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "not_solved", StatusNotSolved.String())
}
