package plconstraint

import "math"

// ReLU constrains f = max(b, 0) for an input variable B and output
// variable F — the most common PL constraint in verification queries,
// and the one spec.md §4.6's branching strategies are named after
// (EarliestReLU, Polarity).
type ReLU struct {
	B, F     int
	fixed    bool
	active   bool // meaningful only when fixed
	auxSlack int  // reserved by SetAuxiliaryVariables; -1 until then
}

// NewReLU constructs an unfixed ReLU over input b and output f.
func NewReLU(b, f int) *ReLU { return &ReLU{B: b, F: f, auxSlack: -1} }

// ReserveAuxiliaryVariables asks for one slack variable to carry the
// active phase's f - b = 0 equation into the tableau.
func (c *ReLU) ReserveAuxiliaryVariables() int { return 1 }

// SetAuxiliaryVariables records the reserved slack's index.
func (c *ReLU) SetAuxiliaryVariables(first int) { c.auxSlack = first }

func (c *ReLU) Kind() string                     { return "relu" }
func (c *ReLU) ParticipatingVariables() []int     { return []int{c.B, c.F} }

func (c *ReLU) Satisfied(a Assignment) bool {
	b, f := a[c.B], a[c.F]
	return math.Abs(f-math.Max(b, 0)) < 1e-8
}

func (c *ReLU) PhaseFixed() bool { return c.fixed }

// GetPossibleFixes proposes the two single-variable corrections: set F
// to max(B,0), or set B to F (valid only when F >= 0).
func (c *ReLU) GetPossibleFixes(a Assignment) []Fix {
	b, f := a[c.B], a[c.F]
	fixes := []Fix{{Variable: c.F, Value: math.Max(b, 0)}}
	if f >= 0 {
		fixes = append(fixes, Fix{Variable: c.B, Value: f})
	}
	return fixes
}

// GetSmartFixes prefers moving whichever variable is closer to its
// target value, the cheaper of the two corrections.
func (c *ReLU) GetSmartFixes(a Assignment) []Fix {
	fixes := c.GetPossibleFixes(a)
	if len(fixes) < 2 {
		return fixes
	}
	costOf := func(fx Fix) float64 { return math.Abs(a[fx.Variable] - fx.Value) }
	if costOf(fixes[0]) <= costOf(fixes[1]) {
		return fixes
	}
	return []Fix{fixes[1], fixes[0]}
}

// GetCaseSplits returns the active (b>=0, f=b) and inactive (b<=0,
// f=0) branches. The active branch also carries the f - b = 0 linear
// equation tying F to B — without it, tightening B's lower bound to 0
// says nothing about F, and the branch can never be satisfied.
func (c *ReLU) GetCaseSplits() []CaseSplit {
	active := CaseSplit{
		Label:            "relu-active",
		BoundTightenings: []BoundTightening{{Variable: c.B, Value: 0, IsUpper: false}},
	}
	if c.auxSlack >= 0 {
		active.Equations = []AuxiliaryEquation{{
			Coefficients: map[int]float64{c.F: 1, c.B: -1},
			RHS:          0,
			AuxVariable:  c.auxSlack,
		}}
	}
	return []CaseSplit{
		active,
		{Label: "relu-inactive", BoundTightenings: []BoundTightening{
			{Variable: c.B, Value: 0, IsUpper: true},
			{Variable: c.F, Value: 0, IsUpper: true},
			{Variable: c.F, Value: 0, IsUpper: false},
		}},
	}
}

func (c *ReLU) SupportPolarity() bool { return true }

// Polarity estimates which phase the current assignment favors: close
// to 1 for strongly active, close to -1 for strongly inactive.
func (c *ReLU) Polarity(a Assignment) float64 {
	b := a[c.B]
	if b == 0 {
		return 0
	}
	return clampPolarity(b / (math.Abs(b) + 1))
}

// Score rewards constraints whose current assignment is far from
// satisfied, the way the SMT core prioritizes the most-violated
// constraint for the next split (spec.md §4.6).
func (c *ReLU) Score(a Assignment) float64 {
	b, f := a[c.B], a[c.F]
	return math.Abs(f - math.Max(b, 0))
}

func (c *ReLU) Duplicate() Constraint {
	dup := *c
	return &dup
}

func (c *ReLU) RestoreState(other Constraint) {
	if o, ok := other.(*ReLU); ok {
		*c = *o
	}
}

// NotifyLowerBound fixes the phase once B's lower bound reaches 0
// (forces active) — spec.md §4.5's implied-split discovery.
func (c *ReLU) NotifyLowerBound(v int, bound float64) {
	if v == c.B && bound >= 0 {
		c.fixed, c.active = true, true
	}
}

// NotifyUpperBound fixes the phase once B's upper bound reaches 0 or
// below (forces inactive).
func (c *ReLU) NotifyUpperBound(v int, bound float64) {
	if v == c.B && bound <= 0 {
		c.fixed, c.active = true, false
	}
}

// AddAuxiliaryEquationsAfterPreprocessing has nothing to contribute at
// ingestion time: ReLU's linearization (f - b = 0) only holds in the
// active phase, so it is phase-specific and carried by GetCaseSplits's
// case-split equations instead of a global preprocessing equation.
func (c *ReLU) AddAuxiliaryEquationsAfterPreprocessing() []AuxiliaryEquation {
	return nil
}

func (c *ReLU) SupportSoI() bool { return true }
