package restore

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"plverify/internal/shared"
	"plverify/internal/solver/tableau"
)

func newCleanTableau() *tableau.Tableau {
	lower := map[int]float64{0: 0, 1: 0, 2: 0}
	upper := map[int]float64{0: 10, 1: 10, 2: math.Inf(1)}
	tab := tableau.New(3, func(v int) float64 { return lower[v] }, func(v int) float64 { return upper[v] }, 1e-9)
	tab.AddEquation(map[int]float64{0: 1, 1: 1, 2: 1}, 2, 5)
	tab.InitializeNonbasics()
	return tab
}

func TestNeedsRestorationFalseForCleanTableau(t *testing.T) {
	r := New(1e-6, tableau.StoreFull)
	tab := newCleanTableau()
	assert.False(t, r.NeedsRestoration(tab))
}

func TestRestoreSucceedsWhenStrongSucceeds(t *testing.T) {
	r := New(1e-6, tableau.StoreFull)
	tab := newCleanTableau()
	err := r.Restore(tab, func() error { return nil }, func() error {
		t.Fatal("weak restoration should not run when strong succeeds")
		return nil
	})
	assert.NoError(t, err)
}

func TestRestoreFallsBackToWeakOnMalformedBasis(t *testing.T) {
	r := New(1e-6, tableau.StoreFull)
	tab := newCleanTableau()
	weakRan := false
	err := r.Restore(tab, func() error {
		return shared.ErrMalformedBasis
	}, func() error {
		weakRan = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, weakRan)
}

func TestRestorePropagatesNonMalformedStrongError(t *testing.T) {
	r := New(1e-6, tableau.StoreFull)
	tab := newCleanTableau()
	boom := errors.New("boom")
	err := r.Restore(tab, func() error { return boom }, func() error {
		t.Fatal("weak restoration should not run for a non-MalformedBasis strong error")
		return nil
	})
	assert.Equal(t, boom, err)
}

func TestRestoreFailsWhenWeakRestorationErrors(t *testing.T) {
	r := New(1e-6, tableau.StoreFull)
	tab := newCleanTableau()
	err := r.Restore(tab, func() error {
		return shared.ErrMalformedBasis
	}, func() error {
		return errors.New("weak failed too")
	})
	assert.True(t, shared.IsCode(err, shared.CodeRestorationFailed))
}
