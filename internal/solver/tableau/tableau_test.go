package tableau

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedBounds(lower, upper map[int]float64) (func(int) float64, func(int) float64) {
	return func(v int) float64 { return lower[v] },
		func(v int) float64 { return upper[v] }
}

// x + y = 5, x in [0, 10], y in [0, 10], aux variable 2 basic for the row.
func newTestTableau() *Tableau {
	lower := map[int]float64{0: 0, 1: 0, 2: 0}
	upper := map[int]float64{0: 10, 1: 10, 2: math.Inf(1)}
	lb, ub := fixedBounds(lower, upper)
	tab := New(3, lb, ub, 1e-9)
	tab.AddEquation(map[int]float64{0: 1, 1: 1, 2: 1}, 2, 5)
	tab.InitializeNonbasics()
	return tab
}

func TestInitializeNonbasicsComputesBasicValue(t *testing.T) {
	tab := newTestTableau()
	assert.Equal(t, 0.0, tab.Value(0))
	assert.Equal(t, 0.0, tab.Value(1))
	assert.Equal(t, 5.0, tab.Value(2))
	assert.True(t, tab.IsBasic(2))
	assert.False(t, tab.IsBasic(0))
}

func TestOutOfBoundsFalseForFeasibleBasic(t *testing.T) {
	tab := newTestTableau()
	assert.False(t, tab.OutOfBounds(2))
}

func TestPivotSwapsBasisAndRecomputes(t *testing.T) {
	tab := newTestTableau()
	err := tab.Pivot(0, 0)
	assert.NoError(t, err)
	assert.True(t, tab.IsBasic(0))
	assert.False(t, tab.IsBasic(2))
	// variable 2 (unbounded above, lower bound 0) leaves at its lower
	// bound, so the row's remaining slack all lands on the new basic x.
	assert.Equal(t, 0.0, tab.Value(2))
	assert.Equal(t, 5.0, tab.Value(0))
	assert.Equal(t, 1, tab.NumPivots())
}

func TestPivotRejectsOutOfRangeEnteringVariable(t *testing.T) {
	tab := newTestTableau()
	err := tab.Pivot(0, 5)
	assert.Error(t, err)
}

func TestStoreAndRestoreFullState(t *testing.T) {
	tab := newTestTableau()
	snap := tab.StoreState(StoreFull)
	assert.NoError(t, tab.Pivot(0, 0))
	assert.True(t, tab.IsBasic(0))
	assert.NoError(t, tab.RestoreState(snap))
	assert.True(t, tab.IsBasic(2))
	assert.Equal(t, 5.0, tab.Value(2))
}

func TestDegradationIsZeroForConsistentAssignment(t *testing.T) {
	tab := newTestTableau()
	assert.InDelta(t, 0.0, tab.Degradation(), 1e-9)
}
