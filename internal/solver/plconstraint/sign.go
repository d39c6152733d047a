package plconstraint

import "math"

// Sign constrains f = sign(b): f = 1 when b >= 0, f = -1 when b < 0 —
// the hard-threshold activation, structurally the simplest of the five
// variants since both branches fix f to a constant.
type Sign struct {
	B, F   int
	fixed  bool
	active bool // active: f = 1 (b >= 0); inactive: f = -1 (b < 0)
}

// NewSign constructs an unfixed sign constraint.
func NewSign(b, f int) *Sign { return &Sign{B: b, F: f} }

func (c *Sign) Kind() string                 { return "sign" }
func (c *Sign) ParticipatingVariables() []int { return []int{c.B, c.F} }

func (c *Sign) expectedF(a Assignment) float64 {
	if a[c.B] >= 0 {
		return 1
	}
	return -1
}

func (c *Sign) Satisfied(a Assignment) bool {
	return math.Abs(a[c.F]-c.expectedF(a)) < 1e-8
}

func (c *Sign) PhaseFixed() bool { return c.fixed }

func (c *Sign) GetPossibleFixes(a Assignment) []Fix {
	return []Fix{{Variable: c.F, Value: c.expectedF(a)}}
}

func (c *Sign) GetSmartFixes(a Assignment) []Fix { return c.GetPossibleFixes(a) }

func (c *Sign) GetCaseSplits() []CaseSplit {
	return []CaseSplit{
		{Label: "sign-positive", BoundTightenings: []BoundTightening{
			{Variable: c.B, Value: 0, IsUpper: false},
			{Variable: c.F, Value: 1, IsUpper: false},
			{Variable: c.F, Value: 1, IsUpper: true},
		}},
		{Label: "sign-negative", BoundTightenings: []BoundTightening{
			{Variable: c.B, Value: 0, IsUpper: true},
			{Variable: c.F, Value: -1, IsUpper: false},
			{Variable: c.F, Value: -1, IsUpper: true},
		}},
	}
}

func (c *Sign) SupportPolarity() bool { return true }

func (c *Sign) Polarity(a Assignment) float64 {
	return clampPolarity(a[c.B] / (math.Abs(a[c.B]) + 1))
}

func (c *Sign) Score(a Assignment) float64 {
	return math.Abs(a[c.F] - c.expectedF(a))
}

func (c *Sign) Duplicate() Constraint {
	dup := *c
	return &dup
}

func (c *Sign) RestoreState(other Constraint) {
	if o, ok := other.(*Sign); ok {
		*c = *o
	}
}

func (c *Sign) NotifyLowerBound(v int, bound float64) {
	if v == c.B && bound >= 0 {
		c.fixed, c.active = true, true
	}
}

func (c *Sign) NotifyUpperBound(v int, bound float64) {
	if v == c.B && bound < 0 {
		c.fixed, c.active = true, false
	}
}

func (c *Sign) AddAuxiliaryEquationsAfterPreprocessing() []AuxiliaryEquation { return nil }

func (c *Sign) SupportSoI() bool { return true }
