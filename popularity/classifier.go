package popularity

import (
	"fmt"
	"math"
)

// Keyword is the qualitative busyness band of a reading.
type Keyword string

const (
	KeywordUnknown     Keyword = "unknown"
	KeywordMuchQuieter Keyword = "much quieter than usual"
	KeywordQuieter     Keyword = "quieter than usual"
	KeywordQuiet       Keyword = "quiet"
	KeywordNormal      Keyword = "normal"
	KeywordLittleBusy  Keyword = "a little busy"
	KeywordBusier      Keyword = "busier than usual"
	KeywordMuchBusier  Keyword = "much busier than usual"
)

// SpikeThresholdPct is the current/usual ratio at which a reading is a spike.
const SpikeThresholdPct = 200

type band struct {
	maxDelta int
	keyword  Keyword
}

// bands are checked in order; the first with delta <= maxDelta wins.
var bands = []band{
	{-35, KeywordMuchQuieter},
	{-15, KeywordQuieter},
	{-5, KeywordQuiet},
	{5, KeywordNormal},
	{15, KeywordLittleBusy},
	{30, KeywordBusier},
}

// Classification is derived from a current/usual pair.
type Classification struct {
	Keyword       Keyword `json:"keyword"`
	Delta         *int    `json:"delta"`
	SpikeRatioPct *int    `json:"spike_ratio_pct"`
}

// IsSpike reports whether the current reading is at least double the usual.
func (c Classification) IsSpike() bool {
	return c.SpikeRatioPct != nil && *c.SpikeRatioPct >= SpikeThresholdPct
}

// SpikeLabel formats the ratio as "270% spike", or returns nil when the
// reading is not a spike.
func (c Classification) SpikeLabel() *string {
	if !c.IsSpike() {
		return nil
	}
	return stringPtr(fmt.Sprintf("%d%% spike", *c.SpikeRatioPct))
}

// Classify bands current - usual into a Keyword. Without a usable baseline
// (usual nil or zero) the result is KeywordUnknown with no delta or ratio.
func Classify(current int, usual *int) Classification {
	if usual == nil || *usual == 0 {
		return Classification{Keyword: KeywordUnknown}
	}

	delta := current - *usual
	out := Classification{
		Keyword: KeywordMuchBusier,
		Delta:   intPtr(delta),
	}
	for _, b := range bands {
		if delta <= b.maxDelta {
			out.Keyword = b.keyword
			break
		}
	}

	if current > *usual {
		ratio := float64(current) / float64(*usual) * 100.0
		out.SpikeRatioPct = intPtr(RoundToNearest10(ratio))
	}
	return out
}

// RoundToNearest10 rounds n to the closest multiple of ten, halves away from
// zero: 263 -> 260, 266.7 -> 270.
func RoundToNearest10(n float64) int {
	return int(math.Round(n/10.0) * 10)
}
