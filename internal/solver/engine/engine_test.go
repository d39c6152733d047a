package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"plverify/internal/nlr"
	"plverify/internal/query"
	"plverify/internal/shared"
	"plverify/internal/solver/smt"
	"plverify/internal/solver/tableau"
	"plverify/internal/solver/tightening"
)

func testConfig() Config {
	return Config{
		PivotTolerance:                  1e-9,
		DegradationEpsilon:              1e-6,
		TighteningStrategy:              tightening.Explicit,
		TighteningMatrixFrequency:       0,
		BranchingStrategy:               smt.EarliestReLU,
		PolarityCandidatesThreshold:     1,
		IntervalSplittingThreshold:      1,
		ScoreBump:                       1,
		SoIEnabled:                      false,
		SoIMaxProposedUpdates:           5,
		SoIRejectionsBeforeSplit:        3,
		SoIAnnealingInitialTemp:         1.0,
		SoIAnnealingCoolingRate:         0.95,
		RestorationDegradationThreshold: 1e-3,
		RestorationDefaultLevel:         tableau.StoreFull,
		TimeoutSeconds:                  0,
	}
}

func TestSolveReturnsSatForTriviallyFeasibleQuery(t *testing.T) {
	eng := New(testConfig(), zap.NewNop(), nlr.New(0, 0))
	q := &query.InputQuery{
		NumberOfVariables: 2,
		LowerBounds:       map[int]float64{0: 0, 1: 0},
		UpperBounds:       map[int]float64{0: 10, 1: 10},
		Equations: []query.Equation{
			{Coefficients: map[int]float64{0: 1, 1: 1}, Op: query.OpEqual, Scalar: 5},
		},
	}

	outcome, err := eng.Solve(context.Background(), q)
	assert.NoError(t, err)
	assert.Equal(t, shared.Sat, outcome)
}

func TestSolveReturnsErrorOutcomeForMalformedInput(t *testing.T) {
	eng := New(testConfig(), zap.NewNop(), nlr.New(0, 0))
	q := &query.InputQuery{
		NumberOfVariables: 1,
		LowerBounds:       map[int]float64{},
		UpperBounds:       map[int]float64{},
	}

	outcome, err := eng.Solve(context.Background(), q)
	assert.Error(t, err)
	assert.Equal(t, shared.ErrorOutcome, outcome)
}

func TestSolveResolvesReLUQueryThroughCaseSplit(t *testing.T) {
	eng := New(testConfig(), zap.NewNop(), nlr.New(0, 0))
	q := &query.InputQuery{
		NumberOfVariables: 2,
		LowerBounds:       map[int]float64{0: -5, 1: 0},
		UpperBounds:       map[int]float64{0: 5, 1: 5},
		PLConstraints: []query.PLConstraintSpec{
			{Kind: "relu", Variables: []int{0, 1}},
		},
	}

	outcome, err := eng.Solve(context.Background(), q)
	assert.NoError(t, err)
	assert.Contains(t, []shared.LoopOutcome{shared.Sat, shared.Unsat}, outcome)
}

func TestRequestQuitStopsTheLoop(t *testing.T) {
	eng := New(testConfig(), zap.NewNop(), nlr.New(0, 0))
	eng.RequestQuit()
	q := &query.InputQuery{
		NumberOfVariables: 1,
		LowerBounds:       map[int]float64{0: 0},
		UpperBounds:       map[int]float64{0: 1},
	}
	outcome, err := eng.Solve(context.Background(), q)
	assert.NoError(t, err)
	assert.Equal(t, shared.QuitRequested, outcome)
}

func TestSolveReturnsErrorOutcomeWhenDebugSolutionExcluded(t *testing.T) {
	eng := New(testConfig(), zap.NewNop(), nlr.New(0, 0))
	q := &query.InputQuery{
		NumberOfVariables: 2,
		LowerBounds:       map[int]float64{0: 0, 1: 0},
		UpperBounds:       map[int]float64{0: 10, 1: 10},
		Equations: []query.Equation{
			{Coefficients: map[int]float64{0: 1, 1: 1}, Op: query.OpEqual, Scalar: 5},
		},
		// A debug solution outside the declared bounds is immediately
		// excluded the moment ingestion records it, surfacing as ERROR
		// rather than a silent wrong answer.
		DebugSolution: map[int]float64{0: 20},
	}

	outcome, err := eng.Solve(context.Background(), q)
	assert.Error(t, err)
	assert.Equal(t, shared.ErrorOutcome, outcome)
}

func TestStatisticsTrackSplitCount(t *testing.T) {
	eng := New(testConfig(), zap.NewNop(), nlr.New(0, 0))
	q := &query.InputQuery{
		NumberOfVariables: 2,
		LowerBounds:       map[int]float64{0: -5, 1: 0},
		UpperBounds:       map[int]float64{0: 5, 1: 5},
		PLConstraints: []query.PLConstraintSpec{
			{Kind: "relu", Variables: []int{0, 1}},
		},
	}
	_, err := eng.Solve(context.Background(), q)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, eng.Statistics().NumVisitedTreeStates, 0)
}
