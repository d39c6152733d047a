package plconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plverify/internal/query"
)

func TestFromSpecBuildsReLU(t *testing.T) {
	c, err := FromSpec(query.PLConstraintSpec{Kind: "relu", Variables: []int{0, 1}})
	assert.NoError(t, err)
	assert.Equal(t, "relu", c.Kind())
}

func TestFromSpecBuildsMaxFromTrailingVariable(t *testing.T) {
	c, err := FromSpec(query.PLConstraintSpec{Kind: "max", Variables: []int{0, 1, 2, 3}})
	assert.NoError(t, err)
	m := c.(*Max)
	assert.Equal(t, []int{0, 1, 2}, m.Elements)
	assert.Equal(t, 3, m.F)
}

func TestFromSpecRejectsDisjunction(t *testing.T) {
	_, err := FromSpec(query.PLConstraintSpec{Kind: "disjunction"})
	assert.Error(t, err)
}

func TestFromSpecRejectsUnknownKind(t *testing.T) {
	_, err := FromSpec(query.PLConstraintSpec{Kind: "nonsense"})
	assert.Error(t, err)
}

func TestFromSpecValidatesArity(t *testing.T) {
	_, err := FromSpec(query.PLConstraintSpec{Kind: "relu", Variables: []int{0}})
	assert.Error(t, err)
}
