package tightening

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plverify/internal/solver/bounds"
)

func TestTightenRowNarrowsFromOthersBounds(t *testing.T) {
	mgr := bounds.New(2)
	mgr.SetLowerBound(1, 0)
	mgr.SetUpperBound(1, 3)
	mgr.SetLowerBound(0, 0)
	mgr.SetUpperBound(0, 100)

	row := Row{Coefficients: map[int]float64{0: 1, 1: 1}, RHS: 5}
	tr := New(Explicit, 0)
	n := tr.TightenRow(row, mgr)

	assert.Greater(t, n, 0)
	assert.Equal(t, 2.0, mgr.GetLowerBound(0))
	assert.Equal(t, 5.0, mgr.GetUpperBound(0))
}

func TestTightenRowSkipsUnboundedOthers(t *testing.T) {
	mgr := bounds.New(2)
	row := Row{Coefficients: map[int]float64{0: 1, 1: 1}, RHS: 5}
	tr := New(Explicit, 0)
	n := tr.TightenRow(row, mgr)
	assert.Equal(t, 0, n)
}

func TestExplicitAndImplicitAlwaysRun(t *testing.T) {
	tr := New(Explicit, 0)
	assert.True(t, tr.ShouldRunOnThisPivot())
	assert.True(t, tr.ShouldRunOnThisPivot())

	tr2 := New(Implicit, 0)
	assert.True(t, tr2.ShouldRunOnThisPivot())
}

func TestMatrixStrategyGatesByFrequency(t *testing.T) {
	tr := New(Matrix, 3)
	assert.False(t, tr.ShouldRunOnThisPivot())
	assert.False(t, tr.ShouldRunOnThisPivot())
	assert.True(t, tr.ShouldRunOnThisPivot())
	assert.False(t, tr.ShouldRunOnThisPivot())
}

func TestTightenRowsRespectsGate(t *testing.T) {
	mgr := bounds.New(2)
	mgr.SetLowerBound(1, 0)
	mgr.SetUpperBound(1, 3)
	mgr.SetLowerBound(0, 0)
	mgr.SetUpperBound(0, 100)
	rows := []Row{{Coefficients: map[int]float64{0: 1, 1: 1}, RHS: 5}}

	tr := New(Matrix, 2)
	assert.Equal(t, 0, tr.TightenRows(rows, mgr))
	assert.Greater(t, tr.TightenRows(rows, mgr), 0)
}
