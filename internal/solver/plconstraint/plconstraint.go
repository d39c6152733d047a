// Package plconstraint implements the PL-Constraint Registry (C5): the
// common interface every piecewise-linear constraint variant
// (ReLU, AbsoluteValue, Max, Disjunction, Sign) satisfies, plus the
// five concrete variants spec.md §3 names. There is no direct teacher
// analogue for piecewise-linear case splitting, so each variant is
// grounded on spec.md §3's definition and the shared shape the
// teacher's other polymorphic strategy types (e.g. its branching and
// tightening strategies) use: a small interface plus one file per
// concrete implementation.
package plconstraint

// Assignment is the current value of every variable, keyed by index.
type Assignment map[int]float64

// Fix is a single-variable correction that would make a constraint
// satisfied without a full case split — getPossibleFixes/getSmartFixes
// in spec.md §4.5.
type Fix struct {
	Variable int
	Value    float64
}

// CaseSplit is one branch of a PL constraint's disjunction: bound
// tightenings plus, for constraints like ReLU's active phase or
// Disjunction's disjuncts that need them, zero or more linear
// equations that must be added to the tableau for the branch to be
// enforced.
type CaseSplit struct {
	Label            string
	BoundTightenings []BoundTightening
	Equations        []AuxiliaryEquation
}

// BoundTightening is one (variable, bound, isUpper) tuple applied when
// a case split is entered.
type BoundTightening struct {
	Variable int
	Value    float64
	IsUpper  bool
}

// Constraint is the common interface of spec.md §3/§4.5: satisfaction
// checking, fix proposals, case splitting, polarity-based branching
// support, scoring for the SMT core's branching heuristics, and the
// state management (duplicate/restoreState/notify*) the bound manager
// and SMT core's backtracking rely on.
type Constraint interface {
	Kind() string
	ParticipatingVariables() []int
	Satisfied(a Assignment) bool
	PhaseFixed() bool
	GetPossibleFixes(a Assignment) []Fix
	GetSmartFixes(a Assignment) []Fix
	GetCaseSplits() []CaseSplit
	SupportPolarity() bool
	Polarity(a Assignment) float64
	Score(a Assignment) float64
	Duplicate() Constraint
	RestoreState(other Constraint)
	NotifyLowerBound(v int, bound float64)
	NotifyUpperBound(v int, bound float64)
	AddAuxiliaryEquationsAfterPreprocessing() []AuxiliaryEquation
	SupportSoI() bool
}

// AuxiliaryEquation is an equality introduced so a PL constraint's
// disjuncts can be expressed linearly inside the tableau (spec.md §3's
// preprocessing step). Coefficients holds the equation's structural
// terms only; AuxVariable names the dedicated slack variable (pinned
// to [0,0] by the caller) that becomes basic in the row once the
// equation is added, the same convention processInputQuery uses for
// the input query's own top-level equations.
type AuxiliaryEquation struct {
	Coefficients map[int]float64
	RHS          float64
	AuxVariable  int
}

// AuxiliaryVariableOwner is implemented by constraints whose
// case-split equations need a dedicated auxiliary variable reserved in
// the tableau before GetCaseSplits is first called. The engine calls
// ReserveAuxiliaryVariables once per constraint during ingestion and,
// if it reports a positive count, hands back the first index of a
// contiguous block of that many variables (each pinned to [0,0]) via
// SetAuxiliaryVariables.
type AuxiliaryVariableOwner interface {
	ReserveAuxiliaryVariables() int
	SetAuxiliaryVariables(first int)
}

// clampPolarity keeps a polarity score in Marabou's conventional
// [-1, 1] range so branching scores stay comparable across variants.
func clampPolarity(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
