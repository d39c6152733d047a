package plconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoWayDisjunction() *Disjunction {
	return NewDisjunction([]Disjunct{
		{Label: "left", BoundTightenings: []BoundTightening{{Variable: 0, Value: 0, IsUpper: true}}},
		{Label: "right", BoundTightenings: []BoundTightening{{Variable: 0, Value: 10, IsUpper: false}}},
	})
}

func TestDisjunctionSatisfiedIfAnyDisjunctHolds(t *testing.T) {
	c := twoWayDisjunction()
	assert.True(t, c.Satisfied(Assignment{0: -1}))
	assert.True(t, c.Satisfied(Assignment{0: 11}))
	assert.False(t, c.Satisfied(Assignment{0: 5}))
}

func TestDisjunctionHasNoScalarFixes(t *testing.T) {
	c := twoWayDisjunction()
	assert.Nil(t, c.GetPossibleFixes(Assignment{0: 5}))
	assert.Nil(t, c.GetSmartFixes(Assignment{0: 5}))
}

func TestDisjunctionDoesNotSupportSoI(t *testing.T) {
	c := twoWayDisjunction()
	assert.False(t, c.SupportSoI())
	assert.False(t, c.SupportPolarity())
}

func TestDisjunctionCaseSplitsMatchDisjuncts(t *testing.T) {
	c := twoWayDisjunction()
	splits := c.GetCaseSplits()
	assert.Len(t, splits, 2)
	assert.Equal(t, "left", splits[0].Label)
}

func TestDisjunctionScoreZeroWhenSatisfied(t *testing.T) {
	c := twoWayDisjunction()
	assert.Equal(t, 0.0, c.Score(Assignment{0: -1}))
}
