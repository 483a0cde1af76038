package popularity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_CurrentAndUsualBySameHour(t *testing.T) {
	r := Match([]string{"12 PM: Currently 40% busy.", "12 PM: Usually 15% busy."})

	require.NotNil(t, r.CurrentPct)
	require.NotNil(t, r.UsualPct)
	require.NotNil(t, r.HourLabel)
	require.NotNil(t, r.RawText)
	assert.Equal(t, 40, *r.CurrentPct)
	assert.Equal(t, 15, *r.UsualPct)
	assert.Equal(t, "12 PM", *r.HourLabel)
	assert.Equal(t, "12 PM: Currently 40% busy.", *r.RawText)
	assert.Equal(t, []Stage{StageCurrentByHour, StageUsualByHour}, r.Stages)
}

func TestMatch_PicksUsualForMatchingHour(t *testing.T) {
	labels := []string{
		"Popular times",
		"11 AM: Usually 20% busy.",
		"12 PM: Usually 15% busy.",
		"12 PM: Currently 40% busy.",
		"1 PM: Usually 30% busy.",
	}

	r := Match(labels)

	require.True(t, r.Complete())
	assert.Equal(t, 40, *r.CurrentPct)
	assert.Equal(t, 15, *r.UsualPct)
	assert.Equal(t, "12 PM", *r.HourLabel)
}

func TestMatch_FirstCurrentWins(t *testing.T) {
	r := Match([]string{
		"Currently 40% busy.",
		"2 PM: Currently 55% busy.",
		"2 PM: Usually 10% busy.",
	})

	require.NotNil(t, r.CurrentPct)
	assert.Equal(t, 40, *r.CurrentPct)
	assert.Nil(t, r.HourLabel, "later labels with an hour are not preferred")
	assert.Nil(t, r.UsualPct)
	assert.Equal(t, []Stage{StageCurrentByHour}, r.Stages)
}

func TestMatch_HourSubstringQuirk(t *testing.T) {
	// "1pm" is contained in "11pm" once spaces are removed.
	r := Match([]string{
		"1 PM: Currently 40% busy.",
		"11 PM: Usually 70% busy.",
		"1 PM: Usually 20% busy.",
	})

	require.True(t, r.Complete())
	assert.Equal(t, "1 PM", *r.HourLabel)
	assert.Equal(t, 70, *r.UsualPct)
}

func TestMatch_EmptyInput(t *testing.T) {
	for _, labels := range [][]string{nil, {}} {
		r := Match(labels)
		assert.Nil(t, r.CurrentPct)
		assert.Nil(t, r.UsualPct)
		assert.Nil(t, r.HourLabel)
		assert.Nil(t, r.RawText)
		assert.Empty(t, r.Stages)
	}
}

func TestMatch_CombinedLineFallback(t *testing.T) {
	r := Match([]string{"Currently 30% busy, usually 45% busy"})

	require.True(t, r.Complete())
	assert.Equal(t, 30, *r.CurrentPct)
	assert.Equal(t, 45, *r.UsualPct)
	assert.Nil(t, r.HourLabel)
	assert.Equal(t, "Currently 30% busy, usually 45% busy", *r.RawText)
	// the current-by-hour stage already takes 30 from the same label
	assert.Equal(t, []Stage{StageCurrentByHour, StageCombinedLine}, r.Stages)
}

func TestMatch_CombinedLineDoesNotOverwrite(t *testing.T) {
	r := Match([]string{
		"12 PM: Currently 40% busy.",
		"Currently 30% busy, usually 45% busy",
	})

	require.True(t, r.Complete())
	assert.Equal(t, 40, *r.CurrentPct)
	assert.Equal(t, 45, *r.UsualPct)
	assert.Equal(t, "12 PM: Currently 40% busy.", *r.RawText)
	assert.Equal(t, "12 PM", *r.HourLabel)
}

func TestMatch_TurkishCombinedLine(t *testing.T) {
	r := Match([]string{"Şu anda 40% meşgul, genelde 20% meşgul"})

	require.True(t, r.Complete())
	assert.Equal(t, 40, *r.CurrentPct)
	assert.Equal(t, 20, *r.UsualPct)
}

func TestMatch_TurkishPercentFirst(t *testing.T) {
	t.Run("SeparateLabels", func(t *testing.T) {
		r := Match([]string{"Şu anda %40 meşgul", "Genelde %20 meşgul"})

		require.NotNil(t, r.CurrentPct)
		assert.Equal(t, 40, *r.CurrentPct)
		assert.Nil(t, r.UsualPct, "no hour to pair the usual label with")
		assert.Equal(t, "Şu anda %40 meşgul", *r.RawText)
	})

	t.Run("CombinedLine", func(t *testing.T) {
		r := Match([]string{"Şu anda %40 meşgul, genelde %20 meşgul"})

		require.True(t, r.Complete())
		assert.Equal(t, 40, *r.CurrentPct)
		assert.Equal(t, 20, *r.UsualPct)
	})

	t.Run("EnglishOnlyClassifierIgnoresSignFirst", func(t *testing.T) {
		r := NewClassifier(English).Match([]string{"Currently %40 busy"})
		assert.Nil(t, r.CurrentPct)
	})
}

func TestMatch_CombinedLineRawTextFollowsCurrent(t *testing.T) {
	labels := []string{
		"Currently 99999999999999999999% busy, usually 30% busy",
		"Usually 99999999999999999999% busy, currently 50% busy",
	}

	r := Match(labels)

	require.True(t, r.Complete())
	assert.Equal(t, 50, *r.CurrentPct)
	assert.Equal(t, 30, *r.UsualPct)
	assert.Equal(t, labels[1], *r.RawText)
	assert.Equal(t, []Stage{StageCombinedLine}, r.Stages)
}

func TestMatch_BroadScanUsesUnfilteredLabels(t *testing.T) {
	r := Match([]string{"Popular times", "Live: currently 55% of capacity"})

	require.NotNil(t, r.CurrentPct)
	assert.Equal(t, 55, *r.CurrentPct)
	assert.Nil(t, r.UsualPct)
	assert.Equal(t, "Live: currently 55% of capacity", *r.RawText)
	assert.Equal(t, []Stage{StageBroadScan}, r.Stages)
}

func TestMatch_BroadScanKeepsEarlierUsual(t *testing.T) {
	r := Match([]string{
		"Currently 99999999999999999999% busy, usually 30% busy",
		"Currently 45% full, usually 90%",
	})

	require.True(t, r.Complete())
	assert.Equal(t, 45, *r.CurrentPct)
	assert.Equal(t, 30, *r.UsualPct, "usual from the combined line is kept")
	assert.Equal(t, "Currently 45% full, usually 90%", *r.RawText)
	assert.Equal(t, []Stage{StageCombinedLine, StageBroadScan}, r.Stages)
}

func TestMatch_SkipsMalformedPercent(t *testing.T) {
	r := Match([]string{
		"12 PM: Currently 99999999999999999999% busy.",
		"1 PM: Currently 40% busy.",
		"1 PM: Usually 20% busy.",
	})

	require.True(t, r.Complete())
	assert.Equal(t, 40, *r.CurrentPct)
	assert.Equal(t, 20, *r.UsualPct)
	assert.Equal(t, "1 PM", *r.HourLabel)
}

func TestMatch_UsualWithoutCurrent(t *testing.T) {
	r := Match([]string{"12 PM: Usually 15% busy.", "1 PM: Usually 25% busy."})

	assert.Nil(t, r.CurrentPct)
	assert.Nil(t, r.UsualPct)
	assert.Empty(t, r.Stages)
}

func TestMatch_Idempotent(t *testing.T) {
	labels := []string{
		"11 AM: Usually 20% busy.",
		"12 PM: Currently 40% busy.",
		"12 PM: Usually 15% busy.",
		"Currently 30% busy, usually 45% busy",
	}

	first := Match(labels)
	second := Match(labels)

	assert.Equal(t, first, second)
}
