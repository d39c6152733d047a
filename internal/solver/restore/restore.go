// Package restore implements the Precision Restorer (C7): watches the
// tableau's accumulated floating-point degradation and, once it
// crosses a threshold, re-derives a clean basis from a stored
// snapshot — strong restoration first (RESTORE_BASICS, full
// recomputation), falling back to weak restoration
// (DO_NOT_RESTORE_BASICS, cheaper but less thorough) when strong
// restoration throws MalformedBasis or leaves the degradation above the
// threshold. Grounded on the tableau's
// own StoreState/RestoreState machinery (C2) plus spec.md §4.7 and the
// decision recorded in SPEC_FULL.md's Open Questions: a MalformedBasis
// surviving both attempts is fatal (RestorationFailed), no third mode
// is tried.
package restore

import (
	"plverify/internal/shared"
	"plverify/internal/solver/tableau"
)

// Mode selects how thoroughly restoration recomputes the basis.
type Mode int

const (
	RestoreBasics Mode = iota
	DoNotRestoreBasics
)

// Restorer tracks the degradation threshold and the last snapshot
// taken at a known-good state.
type Restorer struct {
	degradationThreshold float64
	defaultLevel         tableau.StorageLevel
}

// New constructs a Restorer with the given degradation threshold and
// default snapshot storage level.
func New(degradationThreshold float64, defaultLevel tableau.StorageLevel) *Restorer {
	return &Restorer{degradationThreshold: degradationThreshold, defaultLevel: defaultLevel}
}

// NeedsRestoration reports whether t's current degradation exceeds the
// configured threshold.
func (r *Restorer) NeedsRestoration(t *tableau.Tableau) bool {
	return t.Degradation() > r.degradationThreshold
}

// Snapshot returns t itself; it stores nothing. Restoration points are
// taken with the tableau's own StoreState.
func (r *Restorer) Snapshot(t *tableau.Tableau) *tableau.Tableau {
	return t // the tableau's own StoreState is the snapshot; kept for call-site symmetry with spec.md's Restorer.storeInitialEngineState
}

// Restore attempts strong restoration first (full snapshot replay),
// and falls back to weak restoration (structural replay, recomputing
// the assignment from the live matrix) when strong restoration returns
// MalformedBasis or succeeds but leaves the degradation above the
// threshold. Any other error from strong restoration is returned as is.
// If weak
// restoration still leaves the tableau degraded beyond threshold, it
// returns RestorationFailed — the fatal path of spec.md §7.
func (r *Restorer) Restore(t *tableau.Tableau, strong, weak func() error) error {
	if err := strong(); err == nil {
		if t.Degradation() <= r.degradationThreshold {
			return nil
		}
	} else if !shared.IsCode(err, shared.CodeMalformedBasis) {
		return err
	}

	if err := weak(); err != nil {
		return shared.ErrRestorationFailed.WithError(err)
	}
	if t.Degradation() > r.degradationThreshold {
		return shared.ErrRestorationFailed
	}
	return nil
}
