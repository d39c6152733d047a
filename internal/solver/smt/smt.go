// Package smt implements the SMT Core (C6): the DPLL-style search over
// piecewise-linear case splits. There is no single teacher file this
// generalizes — it is grounded on the shape of the teacher's other
// named strategy enums (branching strategy names mirror spec.md §4.6
// directly) and on the bound manager's push/pop context stack (C1) for
// the actual backtracking mechanism, so this package holds only the
// search bookkeeping: which constraint to split on next and which
// alternative remains to try after a backtrack.
package smt

import (
	"fmt"
	"math"

	"plverify/internal/solver/bounds"
	"plverify/internal/solver/plconstraint"
)

// Strategy selects how the next case-split constraint is chosen,
// spec.md §4.6's five named strategies.
type Strategy string

const (
	EarliestReLU   Strategy = "earliest-relu"
	Polarity       Strategy = "polarity"
	LargestInterval Strategy = "largest-interval"
	PseudoImpact   Strategy = "pseudo-impact"
	Auto           Strategy = "auto"
)

// StackEntry is one level of the case-split search tree.
type StackEntry struct {
	ChosenConstraint          plconstraint.Constraint
	RemainingAlternatives     []plconstraint.CaseSplit
	AppliedSplit              plconstraint.CaseSplit
	ImpliedValidSplitsWhileHere []plconstraint.CaseSplit
}

// Core drives the case-split search: which PL constraint to branch on,
// applying/backtracking splits, and (for PseudoImpact) learning
// which constraints have historically produced the most useful splits.
type Core struct {
	strategy                    Strategy
	polarityCandidatesThreshold int
	intervalSplittingThreshold  int
	scoreBump                   float64

	stack       []*StackEntry
	pseudoImpact map[string]float64
	splitCount  int
}

// New constructs a Core using the given branching strategy.
func New(strategy Strategy, polarityCandidatesThreshold, intervalSplittingThreshold int, scoreBump float64) *Core {
	return &Core{
		strategy:                    strategy,
		polarityCandidatesThreshold: polarityCandidatesThreshold,
		intervalSplittingThreshold:  intervalSplittingThreshold,
		scoreBump:                   scoreBump,
		pseudoImpact:                map[string]float64{},
	}
}

// Depth returns the current case-split stack depth.
func (c *Core) Depth() int { return len(c.stack) }

// SplitCount returns the number of splits this core has performed so
// far. The engine's numVisitedTreeStates statistic is a separate
// counter kept by the engine itself.
func (c *Core) SplitCount() int { return c.splitCount }

func constraintKey(con plconstraint.Constraint) string {
	vars := con.ParticipatingVariables()
	return fmt.Sprintf("%s:%v", con.Kind(), vars)
}

// SelectBranchingConstraint picks the next unfixed PL constraint to
// split on, from the unsatisfied candidates, according to the
// configured strategy.
func (c *Core) SelectBranchingConstraint(candidates []plconstraint.Constraint, a plconstraint.Assignment, mgr *bounds.Manager) plconstraint.Constraint {
	var unfixed []plconstraint.Constraint
	for _, con := range candidates {
		if !con.PhaseFixed() && !con.Satisfied(a) {
			unfixed = append(unfixed, con)
		}
	}
	if len(unfixed) == 0 {
		return nil
	}

	strategy := c.strategy
	if strategy == Auto {
		strategy = c.autoPick(unfixed)
	}

	switch strategy {
	case EarliestReLU:
		return c.earliest(unfixed)
	case Polarity:
		return c.byPolarity(unfixed, a)
	case LargestInterval:
		return c.byLargestInterval(unfixed, mgr)
	case PseudoImpact:
		return c.byPseudoImpact(unfixed)
	default:
		return unfixed[0]
	}
}

// autoPick uses polarity-based selection once enough candidates
// support it, otherwise falls back to earliest, matching how Marabou's
// "auto" strategy escalates from cheap to informed heuristics.
func (c *Core) autoPick(candidates []plconstraint.Constraint) Strategy {
	polaritySupporting := 0
	for _, con := range candidates {
		if con.SupportPolarity() {
			polaritySupporting++
		}
	}
	if polaritySupporting >= c.polarityCandidatesThreshold {
		return Polarity
	}
	return EarliestReLU
}

func (c *Core) earliest(candidates []plconstraint.Constraint) plconstraint.Constraint {
	best := candidates[0]
	bestVar := minVar(best)
	for _, con := range candidates[1:] {
		if v := minVar(con); v < bestVar {
			best, bestVar = con, v
		}
	}
	return best
}

func minVar(con plconstraint.Constraint) int {
	vars := con.ParticipatingVariables()
	m := vars[0]
	for _, v := range vars[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// byPolarity picks the constraint whose polarity is closest to zero —
// the most "undecided" — among those that support it.
func (c *Core) byPolarity(candidates []plconstraint.Constraint, a plconstraint.Assignment) plconstraint.Constraint {
	var best plconstraint.Constraint
	bestAbs := math.Inf(1)
	for _, con := range candidates {
		if !con.SupportPolarity() {
			continue
		}
		if p := math.Abs(con.Polarity(a)); p < bestAbs {
			best, bestAbs = con, p
		}
	}
	if best == nil {
		return c.earliest(candidates)
	}
	return best
}

// byLargestInterval picks the candidate whose participating variables
// have the widest remaining bound interval, favoring splits that cut
// the most search space.
func (c *Core) byLargestInterval(candidates []plconstraint.Constraint, mgr *bounds.Manager) plconstraint.Constraint {
	var best plconstraint.Constraint
	bestWidth := -1.0
	for _, con := range candidates {
		width := 0.0
		for _, v := range con.ParticipatingVariables() {
			if w := mgr.Width(v); w > width {
				width = w
			}
		}
		if width > bestWidth {
			best, bestWidth = con, width
		}
	}
	return best
}

func (c *Core) byPseudoImpact(candidates []plconstraint.Constraint) plconstraint.Constraint {
	var best plconstraint.Constraint
	bestScore := math.Inf(-1)
	for _, con := range candidates {
		score := c.pseudoImpact[constraintKey(con)]
		if score == 0 {
			score = c.scoreBump
		}
		if score > bestScore {
			best, bestScore = con, score
		}
	}
	return best
}

// RecordSplitOutcome bumps a constraint's pseudo-impact score after a
// split resolves, the learning signal PseudoImpact branching relies on
// for subsequent choices (spec.md §4.6).
func (c *Core) RecordSplitOutcome(con plconstraint.Constraint, usefulnessDelta float64) {
	c.pseudoImpact[constraintKey(con)] += usefulnessDelta
}

// PerformSplit pushes a new search level, applies splitIndex's bound
// tightenings to mgr, and returns the resulting stack entry.
func (c *Core) PerformSplit(mgr *bounds.Manager, con plconstraint.Constraint, splitIndex int) (*StackEntry, error) {
	splits := con.GetCaseSplits()
	if splitIndex < 0 || splitIndex >= len(splits) {
		return nil, fmt.Errorf("smt: split index %d out of range for constraint %s", splitIndex, con.Kind())
	}
	mgr.Push()
	chosen := splits[splitIndex]
	applySplit(mgr, chosen)

	remaining := make([]plconstraint.CaseSplit, 0, len(splits)-1)
	for i, s := range splits {
		if i != splitIndex {
			remaining = append(remaining, s)
		}
	}

	entry := &StackEntry{ChosenConstraint: con, RemainingAlternatives: remaining, AppliedSplit: chosen}
	c.stack = append(c.stack, entry)
	c.splitCount++
	return entry, nil
}

func applySplit(mgr *bounds.Manager, split plconstraint.CaseSplit) {
	for _, bt := range split.BoundTightenings {
		if bt.IsUpper {
			mgr.TightenUpperBound(bt.Variable, bt.Value)
		} else {
			mgr.TightenLowerBound(bt.Variable, bt.Value)
		}
	}
}

// PopSplit backtracks out of the current search level, restoring mgr
// to its pre-split bounds, and returns the entry that was popped so
// the caller can try its next remaining alternative (or discard it if
// none remain).
func (c *Core) PopSplit(mgr *bounds.Manager) (*StackEntry, error) {
	if len(c.stack) == 0 {
		return nil, fmt.Errorf("smt: pop with empty case-split stack")
	}
	entry := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if err := mgr.Pop(); err != nil {
		return nil, err
	}
	return entry, nil
}

// RetrySameLevel re-pushes a level using the next remaining
// alternative of a just-popped entry, the DPLL "try the other branch"
// step.
func (c *Core) RetrySameLevel(mgr *bounds.Manager, entry *StackEntry) error {
	if len(entry.RemainingAlternatives) == 0 {
		return fmt.Errorf("smt: no remaining alternatives at this level")
	}
	mgr.Push()
	next := entry.RemainingAlternatives[0]
	entry.RemainingAlternatives = entry.RemainingAlternatives[1:]
	entry.AppliedSplit = next
	applySplit(mgr, next)
	c.stack = append(c.stack, entry)
	c.splitCount++
	return nil
}
