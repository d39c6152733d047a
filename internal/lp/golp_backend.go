//go:build cgo && golp

// Package lp: this file wires the real backend to lp_solve via golp, the
// way the teacher's GolpSolver does — grounded directly on it, with the
// fixed-columns/binary-variable machinery stripped since the engine's
// relaxations are continuous and its column count is set once at
// EncodeInputQuery time.
package lp

import (
	"errors"
	"math"

	"github.com/draffensperger/golp"
)

// GolpBackend wraps lp_solve through github.com/draffensperger/golp.
type GolpBackend struct {
	numVars    int
	equations  []Equation
	lower      []float64
	upper      []float64
	cost       []float64
	timeLimit  float64
	threads    int
	lp         *golp.LP
	lastStatus Status
	iterations int
}

// NewGolpBackend constructs a backend instance for a relaxation over
// numVars continuous variables.
func NewGolpBackend(numVars int) *GolpBackend {
	lower := make([]float64, numVars)
	upper := make([]float64, numVars)
	for i := range upper {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}
	return &GolpBackend{numVars: numVars, lower: lower, upper: upper, cost: make([]float64, numVars)}
}

func (b *GolpBackend) Name() string { return "golp-lp_solve" }

func (b *GolpBackend) EncodeInputQuery(numVars int, equations []Equation, lower, upper map[int]float64) error {
	if numVars != b.numVars {
		return errors.New("lp: variable count mismatch between backend and query")
	}
	b.equations = equations
	for v, value := range lower {
		if v >= 0 && v < b.numVars {
			b.lower[v] = value
		}
	}
	for v, value := range upper {
		if v >= 0 && v < b.numVars {
			b.upper[v] = value
		}
	}
	return nil
}

func (b *GolpBackend) EncodeCostFunction(coefficients map[int]float64) error {
	b.cost = make([]float64, b.numVars)
	for v, c := range coefficients {
		if v >= 0 && v < b.numVars {
			b.cost[v] = c
		}
	}
	return nil
}

func (b *GolpBackend) SetLowerBound(v int, value float64) error {
	if v < 0 || v >= b.numVars {
		return errors.New("lp: variable index out of range")
	}
	b.lower[v] = value
	return nil
}

func (b *GolpBackend) SetUpperBound(v int, value float64) error {
	if v < 0 || v >= b.numVars {
		return errors.New("lp: variable index out of range")
	}
	b.upper[v] = value
	return nil
}

func (b *GolpBackend) SetTimeLimit(seconds float64) { b.timeLimit = seconds }
func (b *GolpBackend) SetVerbosity(level int)        {}
func (b *GolpBackend) SetNumberOfThreads(n int)      { b.threads = n }

func (b *GolpBackend) UpdateModel() error { return nil }

func (b *GolpBackend) Solve() error {
	model := golp.NewLP(0, b.numVars)
	if model == nil {
		b.lastStatus = StatusError
		return errors.New("lp: failed to create lp_solve model")
	}
	b.lp = model

	model.SetObjFn(b.cost)
	model.SetMinimize()

	for _, eq := range b.equations {
		coeffs := make([]float64, b.numVars)
		for v, c := range eq.Coefficients {
			if v >= 0 && v < b.numVars {
				coeffs[v] = c
			}
		}
		if err := model.AddConstraint(coeffs, golp.EQ, eq.RHS); err != nil {
			b.lastStatus = StatusError
			return err
		}
	}

	for i := 0; i < b.numVars; i++ {
		upper := b.upper[i]
		lower := b.lower[i]
		if math.IsInf(upper, 1) {
			upper = 1e30
		}
		if math.IsInf(lower, -1) {
			lower = -1e30
		}
		model.SetBounds(i, lower, upper)
	}

	model.SetVerboseLevel(golp.NEUTRAL)

	switch model.Solve() {
	case golp.OPTIMAL:
		b.lastStatus = StatusOptimal
	case golp.INFEASIBLE:
		b.lastStatus = StatusInfeasible
	case golp.UNBOUNDED:
		b.lastStatus = StatusUnbounded
	default:
		b.lastStatus = StatusError
	}
	return nil
}

func (b *GolpBackend) HaveFeasibleSolution() bool { return b.lastStatus == StatusOptimal }
func (b *GolpBackend) Optimal() bool              { return b.lastStatus == StatusOptimal }
func (b *GolpBackend) Infeasible() bool           { return b.lastStatus == StatusInfeasible }
func (b *GolpBackend) Timeout() bool              { return b.lastStatus == StatusTimeout }

func (b *GolpBackend) ExtractSolution() (map[int]float64, error) {
	if b.lp == nil || b.lastStatus != StatusOptimal {
		return nil, errors.New("lp: no optimal solution to extract")
	}
	vars := b.lp.Variables()
	solution := make(map[int]float64, b.numVars)
	for i := 0; i < b.numVars && i < len(vars); i++ {
		solution[i] = vars[i]
	}
	return solution, nil
}

func (b *GolpBackend) GetNumberOfSimplexIterations() int { return b.iterations }

func (b *GolpBackend) Close() {}
