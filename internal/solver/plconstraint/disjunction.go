package plconstraint

import "math"

// Disjunct is one alternative of a Disjunction: a set of bound
// tightenings plus linear equations that must all hold.
type Disjunct struct {
	Label            string
	BoundTightenings []BoundTightening
	Equations        []AuxiliaryEquation
}

// Disjunction is the general n-way disjunctive constraint spec.md §3
// lists alongside the more specialized ReLU/AbsoluteValue/Max/Sign
// variants: "at least one of these disjuncts holds". Because a
// disjunct's feasibility can depend on the full tableau rather than a
// simple scalar relation, Disjunction is the one built-in variant
// without a sound local-search cost (SPEC_FULL.md's recorded decision
// on supportSoI); the SMT core always case-splits it instead.
type Disjunction struct {
	Disjuncts []Disjunct
	fixed     bool
	chosen    int
}

// NewDisjunction constructs an unfixed disjunction over the given disjuncts.
func NewDisjunction(disjuncts []Disjunct) *Disjunction {
	return &Disjunction{Disjuncts: disjuncts, chosen: -1}
}

func (c *Disjunction) Kind() string { return "disjunction" }

func (c *Disjunction) ParticipatingVariables() []int {
	seen := map[int]bool{}
	var vars []int
	for _, d := range c.Disjuncts {
		for _, bt := range d.BoundTightenings {
			if !seen[bt.Variable] {
				seen[bt.Variable] = true
				vars = append(vars, bt.Variable)
			}
		}
	}
	return vars
}

// disjunctSatisfied checks whether a's values obey every bound
// tightening in d (the equations are the tableau's concern, not this
// package's — they're applied when the disjunct's branch is entered).
func disjunctSatisfied(d Disjunct, a Assignment) bool {
	for _, bt := range d.BoundTightenings {
		v := a[bt.Variable]
		if bt.IsUpper && v > bt.Value+1e-8 {
			return false
		}
		if !bt.IsUpper && v < bt.Value-1e-8 {
			return false
		}
	}
	return true
}

func (c *Disjunction) Satisfied(a Assignment) bool {
	for _, d := range c.Disjuncts {
		if disjunctSatisfied(d, a) {
			return true
		}
	}
	return false
}

func (c *Disjunction) PhaseFixed() bool { return c.fixed }

// GetPossibleFixes has nothing scalar to propose: satisfying a
// disjunction generally requires moving several variables together,
// which is exactly what a case split resolves.
func (c *Disjunction) GetPossibleFixes(a Assignment) []Fix { return nil }

func (c *Disjunction) GetSmartFixes(a Assignment) []Fix { return nil }

func (c *Disjunction) GetCaseSplits() []CaseSplit {
	splits := make([]CaseSplit, 0, len(c.Disjuncts))
	for _, d := range c.Disjuncts {
		splits = append(splits, CaseSplit{Label: d.Label, BoundTightenings: d.BoundTightenings, Equations: d.Equations})
	}
	return splits
}

func (c *Disjunction) SupportPolarity() bool        { return false }
func (c *Disjunction) Polarity(a Assignment) float64 { return 0 }

// Score is 0 when at least one disjunct holds under a and 1 when every
// disjunct is violated.
func (c *Disjunction) Score(a Assignment) float64 {
	violated := 0
	for _, d := range c.Disjuncts {
		if !disjunctSatisfied(d, a) {
			violated++
		}
	}
	return math.Max(0, float64(violated-len(c.Disjuncts)+1))
}

func (c *Disjunction) Duplicate() Constraint {
	dup := *c
	dup.Disjuncts = append([]Disjunct(nil), c.Disjuncts...)
	return &dup
}

func (c *Disjunction) RestoreState(other Constraint) {
	if o, ok := other.(*Disjunction); ok {
		c.fixed, c.chosen = o.fixed, o.chosen
		c.Disjuncts = append([]Disjunct(nil), o.Disjuncts...)
	}
}

func (c *Disjunction) NotifyLowerBound(v int, bound float64) {}
func (c *Disjunction) NotifyUpperBound(v int, bound float64) {}

func (c *Disjunction) AddAuxiliaryEquationsAfterPreprocessing() []AuxiliaryEquation {
	if c.chosen < 0 || c.chosen >= len(c.Disjuncts) {
		return nil
	}
	return c.Disjuncts[c.chosen].Equations
}

// SupportSoI is false: Disjunction opts out of the Sum-of-Infeasibilities
// local search and is always resolved by explicit case splitting.
func (c *Disjunction) SupportSoI() bool { return false }
