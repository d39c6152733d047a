package plconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignSatisfied(t *testing.T) {
	c := NewSign(0, 1)
	assert.True(t, c.Satisfied(Assignment{0: 5, 1: 1}))
	assert.True(t, c.Satisfied(Assignment{0: -5, 1: -1}))
	assert.False(t, c.Satisfied(Assignment{0: 5, 1: -1}))
}

func TestSignGetPossibleFixes(t *testing.T) {
	c := NewSign(0, 1)
	fixes := c.GetPossibleFixes(Assignment{0: -2, 1: 1})
	assert.Equal(t, Fix{Variable: 1, Value: -1}, fixes[0])
}

func TestSignCaseSplitsFixBothVariables(t *testing.T) {
	c := NewSign(0, 1)
	splits := c.GetCaseSplits()
	assert.Len(t, splits, 2)
	assert.Len(t, splits[0].BoundTightenings, 3)
}

func TestSignNotifyBoundary(t *testing.T) {
	c := NewSign(0, 1)
	c.NotifyUpperBound(0, -0.5)
	assert.True(t, c.PhaseFixed())
}
