package stats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTableNameIsStable(t *testing.T) {
	assert.Equal(t, "solver_runs", Run{}.TableName())
}

func TestBeforeCreateGeneratesUUIDOnlyWhenUnset(t *testing.T) {
	r := &Run{}
	assert.NoError(t, r.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, r.ID)

	existing := r.ID
	assert.NoError(t, r.BeforeCreate(nil))
	assert.Equal(t, existing, r.ID)
}
