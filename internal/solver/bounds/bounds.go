// Package bounds implements the Bound Manager (C1): per-variable lower
// and upper bounds, a stack of saved contexts for the SMT core's
// push/pop case-split discipline, and a pending-tightening queue so
// the tableau and PL constraints can propose bound updates without
// immediately racing each other. Grounded on the teacher's
// PureGoSimplexSolver bound arrays (lowerBounds/upperBounds
// []float64), generalized to a map-backed store with history.
package bounds

import (
	"fmt"
	"math"
)

// Tightening is a single proposed bound update, queued by the tableau
// or a PL constraint and drained by the engine before the next pivot.
type Tightening struct {
	Variable int
	Value    float64
	IsUpper  bool
}

type context struct {
	lower   map[int]float64
	upper   map[int]float64
}

// Manager owns the authoritative lower/upper bound for every variable
// and a stack of saved snapshots, one per active case split.
type Manager struct {
	lower   map[int]float64
	upper   map[int]float64
	stack   []context
	pending []Tightening

	debugSolution map[int]float64
}

// New constructs an empty Manager for numVars variables, all unbounded.
func New(numVars int) *Manager {
	m := &Manager{lower: make(map[int]float64, numVars), upper: make(map[int]float64, numVars)}
	for v := 0; v < numVars; v++ {
		m.lower[v] = math.Inf(-1)
		m.upper[v] = math.Inf(1)
	}
	return m
}

// GetLowerBound / GetUpperBound read the current bound of v.
func (m *Manager) GetLowerBound(v int) float64 { return m.lower[v] }
func (m *Manager) GetUpperBound(v int) float64 { return m.upper[v] }

// SetLowerBound tightens v's lower bound unconditionally (used during
// ingestion, before consistency matters).
func (m *Manager) SetLowerBound(v int, value float64) { m.lower[v] = value }

// SetUpperBound tightens v's upper bound unconditionally.
func (m *Manager) SetUpperBound(v int, value float64) { m.upper[v] = value }

// TightenLowerBound raises v's lower bound only if value is an
// improvement, queuing the change for the caller to observe via Drain.
func (m *Manager) TightenLowerBound(v int, value float64) bool {
	if value > m.lower[v] {
		m.lower[v] = value
		m.pending = append(m.pending, Tightening{Variable: v, Value: value, IsUpper: false})
		return true
	}
	return false
}

// TightenUpperBound lowers v's upper bound only if value is an
// improvement.
func (m *Manager) TightenUpperBound(v int, value float64) bool {
	if value < m.upper[v] {
		m.upper[v] = value
		m.pending = append(m.pending, Tightening{Variable: v, Value: value, IsUpper: true})
		return true
	}
	return false
}

// SetDebugSolution records a known-satisfying assignment (spec.md §6's
// debug solution) that every tightening must keep feasible, mirroring
// original_source/Engine.cpp's test-suite safety net.
func (m *Manager) SetDebugSolution(solution map[int]float64) {
	m.debugSolution = solution
}

// CheckDebugInvariant reports whether the current bounds still admit
// the debug solution, if one was set. A tightening that excludes it is
// the DebuggingInvariantViolated condition of spec.md §7.
func (m *Manager) CheckDebugInvariant() (violatingVar int, violated bool) {
	for v, value := range m.debugSolution {
		if value < m.lower[v] || value > m.upper[v] {
			return v, true
		}
	}
	return 0, false
}

// DrainPending returns and clears all tightenings proposed since the
// last drain, the way the engine's main loop collects row-bound-
// tightener output between pivots (spec.md §4.9 step 4).
func (m *Manager) DrainPending() []Tightening {
	out := m.pending
	m.pending = nil
	return out
}

// ConsistentBounds reports whether every variable's lower bound does
// not exceed its upper bound. A violation here is the Infeasible
// signal of spec.md §7.
func (m *Manager) ConsistentBounds() bool {
	for v, lb := range m.lower {
		if lb > m.upper[v] {
			return false
		}
	}
	return true
}

// InconsistentVariable returns the first variable whose bounds
// contradict, for diagnostic messages.
func (m *Manager) InconsistentVariable() (int, bool) {
	for v, lb := range m.lower {
		if lb > m.upper[v] {
			return v, true
		}
	}
	return 0, false
}

// Push snapshots the current bounds onto the context stack, entering a
// new SMT case-split level (spec.md §4.6's StackEntry.savedEngineSnapshot).
func (m *Manager) Push() {
	snap := context{lower: make(map[int]float64, len(m.lower)), upper: make(map[int]float64, len(m.upper))}
	for v, b := range m.lower {
		snap.lower[v] = b
	}
	for v, b := range m.upper {
		snap.upper[v] = b
	}
	m.stack = append(m.stack, snap)
}

// Pop restores the bounds saved by the most recent Push, the way the
// SMT core backtracks out of an infeasible case split.
func (m *Manager) Pop() error {
	if len(m.stack) == 0 {
		return fmt.Errorf("bounds: pop with empty context stack")
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.lower = top.lower
	m.upper = top.upper
	m.pending = nil
	return nil
}

// Depth reports how many contexts are currently pushed.
func (m *Manager) Depth() int { return len(m.stack) }

// Width returns the distance between v's bounds, used by the SMT
// core's LargestInterval branching strategy (spec.md §4.6).
func (m *Manager) Width(v int) float64 { return m.upper[v] - m.lower[v] }
