package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"livepop-server/models/live_popularity"
)

func TestObserveResult(t *testing.T) {
	keyword := "busier than usual"
	spike := "270% spike"
	res := live_popularity.Result{
		Keyword:    &keyword,
		SpikeLabel: &spike,
		Stages:     []string{"current_by_hour", "usual_by_hour"},
	}

	stageBefore := testutil.ToFloat64(StageHitsTotal.WithLabelValues("usual_by_hour"))
	keywordBefore := testutil.ToFloat64(KeywordsTotal.WithLabelValues(keyword))
	spikesBefore := testutil.ToFloat64(SpikesTotal)

	ObserveResult(res)

	assert.Equal(t, stageBefore+1, testutil.ToFloat64(StageHitsTotal.WithLabelValues("usual_by_hour")))
	assert.Equal(t, keywordBefore+1, testutil.ToFloat64(KeywordsTotal.WithLabelValues(keyword)))
	assert.Equal(t, spikesBefore+1, testutil.ToFloat64(SpikesTotal))
}

func TestObserveResult_Empty(t *testing.T) {
	spikesBefore := testutil.ToFloat64(SpikesTotal)
	ObserveResult(live_popularity.Result{})
	assert.Equal(t, spikesBefore, testutil.ToFloat64(SpikesTotal))
}
