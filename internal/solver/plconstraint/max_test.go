package plconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxSatisfied(t *testing.T) {
	c := NewMax([]int{0, 1, 2}, 3)
	assert.True(t, c.Satisfied(Assignment{0: 1, 1: 5, 2: 2, 3: 5}))
	assert.False(t, c.Satisfied(Assignment{0: 1, 1: 5, 2: 2, 3: 4}))
}

func TestMaxParticipatingVariablesIncludesF(t *testing.T) {
	c := NewMax([]int{0, 1}, 2)
	assert.Equal(t, []int{0, 1, 2}, c.ParticipatingVariables())
}

func TestMaxGetCaseSplitsOnePerElement(t *testing.T) {
	c := NewMax([]int{0, 1, 2}, 3)
	splits := c.GetCaseSplits()
	assert.Len(t, splits, 3)
}

func TestMaxDoesNotSupportPolarity(t *testing.T) {
	c := NewMax([]int{0, 1}, 2)
	assert.False(t, c.SupportPolarity())
	assert.True(t, c.SupportSoI())
}

func TestMaxDuplicateCopiesElements(t *testing.T) {
	c := NewMax([]int{0, 1}, 2)
	dup := c.Duplicate().(*Max)
	dup.Elements[0] = 99
	assert.Equal(t, 0, c.Elements[0])
}
