package smt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plverify/internal/solver/bounds"
	"plverify/internal/solver/plconstraint"
)

func TestSelectBranchingConstraintSkipsSatisfied(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	a := plconstraint.Assignment{0: 3, 1: 3, 2: -1, 3: 5}
	satisfied := plconstraint.NewReLU(0, 1)
	unsatisfied := plconstraint.NewReLU(2, 3)
	mgr := bounds.New(4)

	chosen := core.SelectBranchingConstraint([]plconstraint.Constraint{satisfied, unsatisfied}, a, mgr)
	assert.Same(t, unsatisfied, chosen)
}

func TestSelectBranchingConstraintReturnsNilWhenAllSatisfied(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	a := plconstraint.Assignment{0: 3, 1: 3}
	satisfied := plconstraint.NewReLU(0, 1)
	mgr := bounds.New(2)

	assert.Nil(t, core.SelectBranchingConstraint([]plconstraint.Constraint{satisfied}, a, mgr))
}

func TestEarliestPicksSmallestParticipatingVariable(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	a := plconstraint.Assignment{0: -1, 1: 1, 4: -1, 5: 1}
	mgr := bounds.New(6)
	late := plconstraint.NewReLU(4, 5)
	early := plconstraint.NewReLU(0, 1)

	chosen := core.SelectBranchingConstraint([]plconstraint.Constraint{late, early}, a, mgr)
	assert.Same(t, early, chosen)
}

func TestPerformSplitAndPopSplitRoundTripBounds(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	mgr := bounds.New(2)
	mgr.SetLowerBound(0, -10)
	mgr.SetUpperBound(0, 10)
	con := plconstraint.NewReLU(0, 1)

	entry, err := core.PerformSplit(mgr, con, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, mgr.GetLowerBound(0))
	assert.Equal(t, 1, core.Depth())
	assert.Equal(t, 1, core.SplitCount())

	popped, err := core.PopSplit(mgr)
	assert.NoError(t, err)
	assert.Same(t, entry, popped)
	assert.Equal(t, -10.0, mgr.GetLowerBound(0))
	assert.Equal(t, 0, core.Depth())
}

func TestPopSplitOnEmptyStackErrors(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	mgr := bounds.New(1)
	_, err := core.PopSplit(mgr)
	assert.Error(t, err)
}

func TestRetrySameLevelAppliesNextAlternative(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	mgr := bounds.New(2)
	mgr.SetLowerBound(0, -10)
	mgr.SetUpperBound(0, 10)
	con := plconstraint.NewReLU(0, 1)

	entry, err := core.PerformSplit(mgr, con, 0)
	assert.NoError(t, err)
	popped, err := core.PopSplit(mgr)
	assert.NoError(t, err)
	assert.Equal(t, entry, popped)

	err = core.RetrySameLevel(mgr, popped)
	assert.NoError(t, err)
	assert.Equal(t, 1, core.Depth())
	assert.Equal(t, 0.0, mgr.GetUpperBound(0))
}

func TestRetrySameLevelFailsWithNoAlternativesLeft(t *testing.T) {
	core := New(EarliestReLU, 1, 1, 1)
	entry := &StackEntry{}
	mgr := bounds.New(1)
	assert.Error(t, core.RetrySameLevel(mgr, entry))
}

func TestRecordSplitOutcomeFeedsesPseudoImpact(t *testing.T) {
	core := New(PseudoImpact, 1, 1, 2)
	a := plconstraint.Assignment{0: -1, 1: 1, 2: -1, 3: 1}
	mgr := bounds.New(4)
	favored := plconstraint.NewReLU(0, 1)
	other := plconstraint.NewReLU(2, 3)

	core.RecordSplitOutcome(favored, 10)
	chosen := core.SelectBranchingConstraint([]plconstraint.Constraint{other, favored}, a, mgr)
	assert.Same(t, favored, chosen)
}
