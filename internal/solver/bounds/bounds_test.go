package bounds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUnbounded(t *testing.T) {
	m := New(3)
	assert.True(t, math.IsInf(m.GetLowerBound(0), -1))
	assert.True(t, math.IsInf(m.GetUpperBound(0), 1))
}

func TestTightenLowerBoundOnlyAcceptsImprovement(t *testing.T) {
	m := New(1)
	assert.True(t, m.TightenLowerBound(0, 2))
	assert.False(t, m.TightenLowerBound(0, 1))
	assert.Equal(t, 2.0, m.GetLowerBound(0))
}

func TestDrainPendingClearsQueue(t *testing.T) {
	m := New(1)
	m.TightenLowerBound(0, 1)
	m.TightenUpperBound(0, 5)
	pending := m.DrainPending()
	assert.Len(t, pending, 2)
	assert.Empty(t, m.DrainPending())
}

func TestConsistentBoundsDetectsViolation(t *testing.T) {
	m := New(1)
	assert.True(t, m.ConsistentBounds())
	m.SetLowerBound(0, 5)
	m.SetUpperBound(0, 1)
	assert.False(t, m.ConsistentBounds())
	v, ok := m.InconsistentVariable()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestPushPopRestoresBounds(t *testing.T) {
	m := New(1)
	m.SetLowerBound(0, 0)
	m.SetUpperBound(0, 10)
	m.Push()
	m.TightenLowerBound(0, 3)
	assert.Equal(t, 3.0, m.GetLowerBound(0))
	assert.NoError(t, m.Pop())
	assert.Equal(t, 0.0, m.GetLowerBound(0))
	assert.Equal(t, 0, m.Depth())
}

func TestPopWithEmptyStackErrors(t *testing.T) {
	m := New(1)
	assert.Error(t, m.Pop())
}

func TestCheckDebugInvariantPassesWhenUnset(t *testing.T) {
	m := New(1)
	_, violated := m.CheckDebugInvariant()
	assert.False(t, violated)
}

func TestCheckDebugInvariantDetectsExcludedSolution(t *testing.T) {
	m := New(1)
	m.SetLowerBound(0, 0)
	m.SetUpperBound(0, 10)
	m.SetDebugSolution(map[int]float64{0: 5})
	_, violated := m.CheckDebugInvariant()
	assert.False(t, violated)

	m.TightenLowerBound(0, 6)
	v, violated := m.CheckDebugInvariant()
	assert.True(t, violated)
	assert.Equal(t, 0, v)
}
