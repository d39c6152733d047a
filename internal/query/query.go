// Package query implements the InputQuery adapter spec.md §6 describes
// as an external collaborator we only consume: a thin JSON loader, not
// the full ingestion/preprocessing pipeline spec.md §1 scopes out.
package query

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"plverify/internal/shared"
)

// RelOp is a linear equation's relational operator, before conversion
// to the equality-only form the tableau consumes (spec.md §3): the
// engine gives each row a slack variable, pinned to 0 for "=" and
// one-sided for "<=" and ">=".
type RelOp string

const (
	OpEqual RelOp = "="
	OpLE    RelOp = "<="
	OpGE    RelOp = ">="
)

// Equation is Σ cᵢxᵢ ⟨=,≤,≥⟩ s before auxiliary-variable conversion.
type Equation struct {
	Coefficients map[int]float64 `json:"coefficients"`
	Op           RelOp           `json:"op"`
	Scalar       float64         `json:"scalar"`
}

// PLConstraintSpec is the wire form of one piecewise-linear constraint:
// a tag plus the variables and parameters its concrete variant needs.
// internal/solver/plconstraint.FromSpec turns this into a live
// constraint registered with the engine.
type PLConstraintSpec struct {
	Kind      string         `json:"kind"` // "relu", "abs", "max", "disjunction", "sign"
	Variables []int          `json:"variables"`
	Params    map[string]any `json:"params,omitempty"`
}

// InputQuery is the minimal concrete implementation of the consumed
// interface of spec.md §6: variable count, bounds, equations, PL
// constraint specs, input/output variable labels, and an optional
// debug solution.
type InputQuery struct {
	NumberOfVariables int                 `json:"numberOfVariables"`
	LowerBounds       map[int]float64     `json:"lowerBounds"`
	UpperBounds       map[int]float64     `json:"upperBounds"`
	Equations         []Equation          `json:"equations"`
	PLConstraints     []PLConstraintSpec  `json:"plConstraints"`
	InputVariables    []int               `json:"inputVariables,omitempty"`
	OutputVariables   []int               `json:"outputVariables,omitempty"`
	DebugSolution     map[int]float64     `json:"debugSolution,omitempty"`
}

// GetNumberOfVariables implements the consumed InputQuery interface.
func (q *InputQuery) GetNumberOfVariables() int { return q.NumberOfVariables }

// GetLowerBound returns the lower bound of variable v, -Inf if unset.
func (q *InputQuery) GetLowerBound(v int) float64 {
	if lb, ok := q.LowerBounds[v]; ok {
		return lb
	}
	return math.Inf(-1)
}

// GetUpperBound returns the upper bound of variable v, +Inf if unset.
func (q *InputQuery) GetUpperBound(v int) float64 {
	if ub, ok := q.UpperBounds[v]; ok {
		return ub
	}
	return math.Inf(1)
}

// SetLowerBound / SetUpperBound mutate bounds during ingestion.
func (q *InputQuery) SetLowerBound(v int, value float64) {
	if q.LowerBounds == nil {
		q.LowerBounds = map[int]float64{}
	}
	q.LowerBounds[v] = value
}

func (q *InputQuery) SetUpperBound(v int, value float64) {
	if q.UpperBounds == nil {
		q.UpperBounds = map[int]float64{}
	}
	q.UpperBounds[v] = value
}

// GetEquations implements the consumed InputQuery interface.
func (q *InputQuery) GetEquations() []Equation { return q.Equations }

// GetPiecewiseLinearConstraints implements the consumed InputQuery
// interface.
func (q *InputQuery) GetPiecewiseLinearConstraints() []PLConstraintSpec { return q.PLConstraints }

// InputVariableByIndex maps a position in InputVariables back to a
// variable index.
func (q *InputQuery) InputVariableByIndex(i int) (int, error) {
	if i < 0 || i >= len(q.InputVariables) {
		return 0, fmt.Errorf("input variable index %d out of range", i)
	}
	return q.InputVariables[i], nil
}

// SetSolutionValue records a debug-solution value used by the
// DebuggingInvariantViolated check (spec.md §7, SPEC_FULL.md item 4).
func (q *InputQuery) SetSolutionValue(v int, value float64) {
	if q.DebugSolution == nil {
		q.DebugSolution = map[int]float64{}
	}
	q.DebugSolution[v] = value
}

// CountInfiniteBounds returns the number of variables whose bound is
// still infinite. Any infinite bound surviving ingestion is a
// MalformedInput fatal condition (spec.md §7, §8).
func (q *InputQuery) CountInfiniteBounds() int {
	count := 0
	for v := 0; v < q.NumberOfVariables; v++ {
		if math.IsInf(q.GetLowerBound(v), -1) || math.IsInf(q.GetUpperBound(v), 1) {
			count++
		}
	}
	return count
}

// Validate enforces the boundary preconditions of spec.md §7/§8: every
// variable must carry finite bounds before the main loop starts.
func (q *InputQuery) Validate() error {
	if n := q.CountInfiniteBounds(); n > 0 {
		return shared.ErrMalformedInput.WithError(fmt.Errorf("%d variable(s) have an infinite bound", n))
	}
	for _, eq := range q.Equations {
		if eq.Op != OpEqual && eq.Op != OpLE && eq.Op != OpGE {
			return shared.ErrMalformedInput.WithError(fmt.Errorf("unsupported relational operator %q", eq.Op))
		}
	}
	return nil
}

// Load reads an InputQuery from a JSON file.
func Load(path string) (*InputQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input query: %w", err)
	}
	var q InputQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parsing input query: %w", err)
	}
	return &q, nil
}

// SaveQuery serializes the query to path, the way spec.md §6 requires
// for the ERROR-path failure artifact (the `.ipq` file).
func (q *InputQuery) SaveQuery(path string) error {
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing input query: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
