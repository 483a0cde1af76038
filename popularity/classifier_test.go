package popularity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Bands(t *testing.T) {
	tests := []struct {
		current, usual int
		want           Keyword
	}{
		{15, 50, KeywordMuchQuieter}, // -35
		{16, 50, KeywordQuieter},     // -34
		{35, 50, KeywordQuieter},     // -15
		{36, 50, KeywordQuiet},       // -14
		{45, 50, KeywordQuiet},       // -5
		{46, 50, KeywordNormal},      // -4
		{50, 50, KeywordNormal},      // 0
		{55, 50, KeywordNormal},      // 5
		{56, 50, KeywordLittleBusy},  // 6
		{65, 50, KeywordLittleBusy},  // 15
		{66, 50, KeywordBusier},      // 16
		{80, 50, KeywordBusier},      // 30
		{81, 50, KeywordMuchBusier},  // 31
		{0, 50, KeywordMuchQuieter},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.current, tt.usual), func(t *testing.T) {
			got := Classify(tt.current, intPtr(tt.usual))
			assert.Equal(t, tt.want, got.Keyword)
			require.NotNil(t, got.Delta)
			assert.Equal(t, tt.current-tt.usual, *got.Delta)
		})
	}
}

func TestClassify_NoBaseline(t *testing.T) {
	for _, usual := range []*int{nil, intPtr(0)} {
		got := Classify(40, usual)
		assert.Equal(t, KeywordUnknown, got.Keyword)
		assert.Nil(t, got.Delta)
		assert.Nil(t, got.SpikeRatioPct)
		assert.False(t, got.IsSpike())
		assert.Nil(t, got.SpikeLabel())
	}
}

func TestClassify_SpikeRatio(t *testing.T) {
	tests := []struct {
		current, usual int
		wantRatio      int
		wantSpike      bool
	}{
		{27, 10, 270, true},
		{19, 10, 190, false},
		{20, 10, 200, true},
		{40, 15, 270, true},
		{11, 10, 110, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.current, tt.usual), func(t *testing.T) {
			got := Classify(tt.current, intPtr(tt.usual))
			require.NotNil(t, got.SpikeRatioPct)
			assert.Equal(t, tt.wantRatio, *got.SpikeRatioPct)
			assert.Equal(t, tt.wantSpike, got.IsSpike())
		})
	}
}

func TestClassify_NoRatioWhenNotAboveUsual(t *testing.T) {
	for current := 0; current <= 100; current += 7 {
		for usual := current; usual <= 100; usual += 9 {
			if usual == 0 {
				continue
			}
			got := Classify(current, intPtr(usual))
			assert.Nil(t, got.SpikeRatioPct, "%d/%d", current, usual)
			assert.False(t, got.IsSpike(), "%d/%d", current, usual)
		}
	}
}

func TestClassification_SpikeLabel(t *testing.T) {
	label := Classify(27, intPtr(10)).SpikeLabel()
	require.NotNil(t, label)
	assert.Equal(t, "270% spike", *label)

	assert.Nil(t, Classify(19, intPtr(10)).SpikeLabel())
}

func TestRoundToNearest10(t *testing.T) {
	assert.Equal(t, 260, RoundToNearest10(263))
	assert.Equal(t, 270, RoundToNearest10(267))
	assert.Equal(t, 270, RoundToNearest10(266.666))
	assert.Equal(t, 200, RoundToNearest10(200))
	assert.Equal(t, 250, RoundToNearest10(245))
}
