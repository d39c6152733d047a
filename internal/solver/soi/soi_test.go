package soi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plverify/internal/solver/plconstraint"
)

func TestInitializePhasePatternSkipsDisjunctions(t *testing.T) {
	m := New(true, 5, 3, 1.0, 0.95)
	relu := plconstraint.NewReLU(0, 1)
	disj := plconstraint.NewDisjunction(nil)
	a := plconstraint.Assignment{0: 2, 1: 2}

	m.InitializePhasePattern([]plconstraint.Constraint{relu, disj}, a)
	keys := m.CurrentPatternKeys()
	assert.Len(t, keys, 1)

	idx, ok := m.CurrentSplitIndex(relu)
	assert.True(t, ok)
	assert.Equal(t, 0, idx) // positive polarity -> split 0 (active)
}

func TestHeuristicCostSumsOnlyEligibleConstraints(t *testing.T) {
	m := New(true, 5, 3, 1.0, 0.95)
	relu := plconstraint.NewReLU(0, 1)
	a := plconstraint.Assignment{0: 3, 1: 0} // violated by 3
	cost := m.HeuristicCost([]plconstraint.Constraint{relu}, a)
	assert.Equal(t, 3.0, cost)
}

func TestProposePhasePatternUpdatePicksWorstConstraint(t *testing.T) {
	m := New(true, 5, 3, 1.0, 0.95)
	good := plconstraint.NewReLU(0, 1)
	bad := plconstraint.NewReLU(2, 3)
	a := plconstraint.Assignment{0: 1, 1: 1, 2: 5, 3: 0}
	m.InitializePhasePattern([]plconstraint.Constraint{good, bad}, a)

	key, newIdx := m.ProposePhasePatternUpdate([]plconstraint.Constraint{good, bad}, a)
	assert.Contains(t, key, "relu")
	assert.GreaterOrEqual(t, newIdx, 0)
}

func TestDecideToAcceptCurrentProposalAlwaysAcceptsImprovement(t *testing.T) {
	m := New(true, 5, 3, 1.0, 0.95)
	assert.True(t, m.DecideToAcceptCurrentProposal(-1, 0.999))
	assert.True(t, m.DecideToAcceptCurrentProposal(0, 0.999))
}

func TestDecideToAcceptCurrentProposalRejectsWhenTemperatureExhausted(t *testing.T) {
	m := New(true, 5, 3, 0, 0.95)
	assert.False(t, m.DecideToAcceptCurrentProposal(1, 0.0))
}

func TestAcceptCommitsAndCoolsTemperature(t *testing.T) {
	m := New(true, 5, 3, 1.0, 0.5)
	relu := plconstraint.NewReLU(0, 1)
	a := plconstraint.Assignment{0: 1, 1: 1}
	m.InitializePhasePattern([]plconstraint.Constraint{relu}, a)

	key, _ := m.ProposePhasePatternUpdate([]plconstraint.Constraint{relu}, a)
	m.AcceptCurrentPhasePatternUpdate(key, 1)
	idx, _ := m.CurrentSplitIndex(relu)
	assert.Equal(t, 1, idx)
}

func TestRejectionCounterTriggersFallback(t *testing.T) {
	m := New(true, 5, 2, 1.0, 0.95)
	assert.False(t, m.ShouldFallBackToSplitting())
	m.ReportRejectedPhasePatternProposal()
	m.ReportRejectedPhasePatternProposal()
	assert.True(t, m.ShouldFallBackToSplitting())
}
