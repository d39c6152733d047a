package plconstraint

import "math"

// AbsoluteValue constrains f = |b|, structurally a relative of ReLU
// with both branches producing a non-trivial linear relation rather
// than ReLU's f=0 inactive branch.
type AbsoluteValue struct {
	B, F     int
	fixed    bool
	active   bool // active: f = b (b >= 0); inactive: f = -b (b <= 0)
	auxSlack int  // reserved by SetAuxiliaryVariables; -1 until then
}

// NewAbsoluteValue constructs an unfixed |b| constraint.
func NewAbsoluteValue(b, f int) *AbsoluteValue { return &AbsoluteValue{B: b, F: f, auxSlack: -1} }

// ReserveAuxiliaryVariables asks for one slack variable, shared by
// both branches since only one is ever entered at a time.
func (c *AbsoluteValue) ReserveAuxiliaryVariables() int { return 1 }

// SetAuxiliaryVariables records the reserved slack's index.
func (c *AbsoluteValue) SetAuxiliaryVariables(first int) { c.auxSlack = first }

func (c *AbsoluteValue) Kind() string                 { return "abs" }
func (c *AbsoluteValue) ParticipatingVariables() []int { return []int{c.B, c.F} }

func (c *AbsoluteValue) Satisfied(a Assignment) bool {
	return math.Abs(a[c.F]-math.Abs(a[c.B])) < 1e-8
}

func (c *AbsoluteValue) PhaseFixed() bool { return c.fixed }

func (c *AbsoluteValue) GetPossibleFixes(a Assignment) []Fix {
	b := a[c.B]
	return []Fix{
		{Variable: c.F, Value: math.Abs(b)},
		{Variable: c.B, Value: a[c.F]},
		{Variable: c.B, Value: -a[c.F]},
	}
}

func (c *AbsoluteValue) GetSmartFixes(a Assignment) []Fix {
	fixes := c.GetPossibleFixes(a)
	best, bestCost := fixes[0], math.Abs(a[fixes[0].Variable]-fixes[0].Value)
	for _, fx := range fixes[1:] {
		if cost := math.Abs(a[fx.Variable] - fx.Value); cost < bestCost {
			best, bestCost = fx, cost
		}
	}
	return []Fix{best}
}

// GetCaseSplits returns the positive (f=b) and negative (f=-b)
// branches, each carrying the linear equation that actually ties F to
// B in that phase.
func (c *AbsoluteValue) GetCaseSplits() []CaseSplit {
	positive := CaseSplit{Label: "abs-positive", BoundTightenings: []BoundTightening{{Variable: c.B, Value: 0, IsUpper: false}}}
	negative := CaseSplit{Label: "abs-negative", BoundTightenings: []BoundTightening{{Variable: c.B, Value: 0, IsUpper: true}}}
	if c.auxSlack >= 0 {
		positive.Equations = []AuxiliaryEquation{{
			Coefficients: map[int]float64{c.F: 1, c.B: -1},
			RHS:          0,
			AuxVariable:  c.auxSlack,
		}}
		negative.Equations = []AuxiliaryEquation{{
			Coefficients: map[int]float64{c.F: 1, c.B: 1},
			RHS:          0,
			AuxVariable:  c.auxSlack,
		}}
	}
	return []CaseSplit{positive, negative}
}

func (c *AbsoluteValue) SupportPolarity() bool { return true }

func (c *AbsoluteValue) Polarity(a Assignment) float64 {
	b := a[c.B]
	if b == 0 {
		return 0
	}
	return clampPolarity(b / (math.Abs(b) + 1))
}

func (c *AbsoluteValue) Score(a Assignment) float64 {
	return math.Abs(a[c.F] - math.Abs(a[c.B]))
}

func (c *AbsoluteValue) Duplicate() Constraint {
	dup := *c
	return &dup
}

func (c *AbsoluteValue) RestoreState(other Constraint) {
	if o, ok := other.(*AbsoluteValue); ok {
		*c = *o
	}
}

func (c *AbsoluteValue) NotifyLowerBound(v int, bound float64) {
	if v == c.B && bound >= 0 {
		c.fixed, c.active = true, true
	}
}

func (c *AbsoluteValue) NotifyUpperBound(v int, bound float64) {
	if v == c.B && bound <= 0 {
		c.fixed, c.active = true, false
	}
}

// AddAuxiliaryEquationsAfterPreprocessing has nothing global to
// contribute: both branches' linearizations are phase-specific and
// carried by GetCaseSplits's case-split equations instead.
func (c *AbsoluteValue) AddAuxiliaryEquationsAfterPreprocessing() []AuxiliaryEquation { return nil }

func (c *AbsoluteValue) SupportSoI() bool { return true }
