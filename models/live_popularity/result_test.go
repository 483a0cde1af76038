package live_popularity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_HasLiveReading(t *testing.T) {
	current := 40
	assert.False(t, (&Result{}).HasLiveReading())
	assert.True(t, (&Result{CurrentPct: &current}).HasLiveReading())
}

func TestResult_CurrentOrZero(t *testing.T) {
	current := 40
	assert.Equal(t, 0, (&Result{}).CurrentOrZero())
	assert.Equal(t, 40, (&Result{CurrentPct: &current}).CurrentOrZero())
}

func TestResult_JSONKeepsNullFields(t *testing.T) {
	data, err := json.Marshal(Result{PlaceName: "Unknown Place"})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"hour_label", "current_pct", "usual_pct", "raw_text", "keyword", "delta", "spike_ratio_pct", "spike_label"} {
		v, ok := raw[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}
	assert.NotContains(t, raw, "scrape")
}
