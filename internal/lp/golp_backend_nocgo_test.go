//go:build !cgo || !golp

package lp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGolpBackendUnavailableWithoutCgoTag(t *testing.T) {
	b := NewGolpBackend(2)
	assert.Error(t, b.EncodeInputQuery(2, nil, nil, nil))
	assert.Error(t, b.Solve())
	assert.False(t, b.Optimal())
	assert.Contains(t, b.Name(), "unavailable")
}
