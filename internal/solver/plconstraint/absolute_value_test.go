package plconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsoluteValueSatisfied(t *testing.T) {
	c := NewAbsoluteValue(0, 1)
	assert.True(t, c.Satisfied(Assignment{0: -3, 1: 3}))
	assert.True(t, c.Satisfied(Assignment{0: 3, 1: 3}))
	assert.False(t, c.Satisfied(Assignment{0: 3, 1: 1}))
}

func TestAbsoluteValueGetSmartFixesPicksCheapest(t *testing.T) {
	c := NewAbsoluteValue(0, 1)
	fixes := c.GetSmartFixes(Assignment{0: 3.1, 1: 3})
	assert.Len(t, fixes, 1)
}

func TestAbsoluteValueCaseSplits(t *testing.T) {
	c := NewAbsoluteValue(0, 1)
	splits := c.GetCaseSplits()
	assert.Len(t, splits, 2)
	assert.Equal(t, "abs-positive", splits[0].Label)
	assert.Equal(t, "abs-negative", splits[1].Label)
}

func TestAbsoluteValueSupportSoI(t *testing.T) {
	c := NewAbsoluteValue(0, 1)
	assert.True(t, c.SupportSoI())
	assert.True(t, c.SupportPolarity())
}
