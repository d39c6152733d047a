package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"plverify/internal/shared"
)

func TestCacheKeyIsNamespaced(t *testing.T) {
	assert.Equal(t, "plverify:query:abc123", cacheKey("abc123"))
}

func TestEntryRoundTripsThroughJSON(t *testing.T) {
	e := Entry{Outcome: shared.Sat, Verdict: "SAT"}
	data, err := json.Marshal(e)
	assert.NoError(t, err)

	var decoded Entry
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, e, decoded)
}
