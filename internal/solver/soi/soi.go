// Package soi implements the Sum-of-Infeasibilities Manager (C8): a
// simulated-annealing-style local search over PL constraint phases
// that tries to satisfy all piecewise-linear constraints
// simultaneously before falling back to SMT case splitting. There is
// no teacher analogue for SoI specifically; it is grounded on spec.md
// §4.8 directly, using the same phase-pattern/heuristic-cost/
// accept-or-reject vocabulary the spec names, implemented as a small
// state machine the engine drives once per main-loop iteration.
package soi

import (
	"math"

	"plverify/internal/solver/plconstraint"
)

// Phase is one PL constraint's chosen branch within the current
// pattern, indexed the same way plconstraint.Constraint.GetCaseSplits
// enumerates branches.
type Phase struct {
	Constraint  plconstraint.Constraint
	SplitIndex  int
}

// Pattern is a full assignment of phases to every SoI-eligible PL
// constraint.
type Pattern map[string]int // constraint key -> split index

// Manager runs the phase-pattern search.
type Manager struct {
	enabled              bool
	maxProposedUpdates   int
	rejectionsBeforeSplit int
	temperature          float64
	coolingRate          float64

	current    Pattern
	rejections int
}

// New constructs a Manager from the configured annealing parameters.
func New(enabled bool, maxProposedUpdates, rejectionsBeforeSplit int, initialTemperature, coolingRate float64) *Manager {
	return &Manager{
		enabled:               enabled,
		maxProposedUpdates:    maxProposedUpdates,
		rejectionsBeforeSplit: rejectionsBeforeSplit,
		temperature:           initialTemperature,
		coolingRate:           coolingRate,
		current:               Pattern{},
	}
}

// Enabled reports whether SoI-based local search should run at all
// (SOI_ENABLED).
func (m *Manager) Enabled() bool { return m.enabled }

// InitializePhasePattern seeds the current pattern from each eligible
// constraint's present polarity: positive polarity picks split 0,
// negative picks split 1, matching spec.md's
// "initialize from the current assignment's natural leaning".
func (m *Manager) InitializePhasePattern(candidates []plconstraint.Constraint, a plconstraint.Assignment) {
	m.current = Pattern{}
	for _, con := range candidates {
		if !con.SupportSoI() {
			continue
		}
		idx := 0
		if con.SupportPolarity() && con.Polarity(a) < 0 {
			idx = 1
		}
		m.current[constraintKey(con)] = idx
	}
}

func constraintKey(con plconstraint.Constraint) string {
	return con.Kind() + ":" + varsKey(con.ParticipatingVariables())
}

// ConstraintKeyFor exposes the phase-pattern key construction so a
// caller holding only the string ProposePhasePatternUpdate returned
// can find which constraint, among its own candidates, that key names.
func ConstraintKeyFor(con plconstraint.Constraint) string {
	return constraintKey(con)
}

func varsKey(vars []int) string {
	s := ""
	for i, v := range vars {
		if i > 0 {
			s += ","
		}
		s += itoa(v)
	}
	return s
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// HeuristicCost computes the sum-of-infeasibilities cost as the sum of
// every SoI-eligible constraint's Score at the current assignment. The
// phase pattern is not consulted: a constraint satisfied in a phase
// other than its pattern entry contributes 0.
func (m *Manager) HeuristicCost(candidates []plconstraint.Constraint, a plconstraint.Assignment) float64 {
	total := 0.0
	for _, con := range candidates {
		if !con.SupportSoI() {
			continue
		}
		total += con.Score(a)
	}
	return total
}

// ProposePhasePatternUpdate flips one constraint's phase at random
// (here, deterministically: the constraint with the worst current
// score), returning that constraint's key and its proposed split index
// without committing it.
func (m *Manager) ProposePhasePatternUpdate(candidates []plconstraint.Constraint, a plconstraint.Assignment) (string, int) {
	var worstKey string
	worstScore := -1.0
	worstSplits := 0
	for _, con := range candidates {
		if !con.SupportSoI() {
			continue
		}
		if s := con.Score(a); s > worstScore {
			worstScore, worstKey, worstSplits = s, constraintKey(con), len(con.GetCaseSplits())
		}
	}
	if worstKey == "" || worstSplits == 0 {
		return "", 0
	}
	return worstKey, (m.current[worstKey] + 1) % worstSplits
}

// DecideToAcceptCurrentProposal applies the simulated-annealing
// acceptance rule: always accept an improvement, accept a worsening
// proposal with probability exp(-delta/temperature) where
// acceptRoll is a caller-supplied sample in [0,1) (kept caller-
// supplied since this package must not call math/rand directly to stay
// deterministic for replay and testing).
func (m *Manager) DecideToAcceptCurrentProposal(deltaCost float64, acceptRoll float64) bool {
	if deltaCost <= 0 {
		return true
	}
	if m.temperature <= 0 {
		return false
	}
	return acceptRoll < math.Exp(-deltaCost/m.temperature)
}

// AcceptCurrentPhasePatternUpdate commits a proposed phase change and
// resets the rejection counter.
func (m *Manager) AcceptCurrentPhasePatternUpdate(key string, splitIndex int) {
	m.current[key] = splitIndex
	m.rejections = 0
	m.temperature *= m.coolingRate
}

// ReportRejectedPhasePatternProposal increments the rejection counter;
// the engine should fall back to SMT case splitting once it reaches
// RejectionsBeforeSplit.
func (m *Manager) ReportRejectedPhasePatternProposal() {
	m.rejections++
}

// ShouldFallBackToSplitting reports whether local search has stalled
// long enough that the engine should abandon SoI for this round and
// perform a real case split instead.
func (m *Manager) ShouldFallBackToSplitting() bool {
	return m.rejections >= m.rejectionsBeforeSplit
}

// CurrentSplitIndex returns the phase pattern's chosen split for con.
func (m *Manager) CurrentSplitIndex(con plconstraint.Constraint) (int, bool) {
	idx, ok := m.current[constraintKey(con)]
	return idx, ok
}

// CurrentPatternKeys reports which constraints the current phase
// pattern has an assignment for, used by the engine to decide whether
// the pattern still needs initializing.
func (m *Manager) CurrentPatternKeys() []string {
	keys := make([]string, 0, len(m.current))
	for k := range m.current {
		keys = append(keys, k)
	}
	return keys
}
