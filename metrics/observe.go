package metrics

import "livepop-server/models/live_popularity"

// ObserveResult records the extraction side of a result: which stages
// contributed, the keyword and whether it was a spike.
func ObserveResult(res live_popularity.Result) {
	for _, s := range res.Stages {
		StageHitsTotal.WithLabelValues(s).Inc()
	}
	if res.Keyword != nil {
		KeywordsTotal.WithLabelValues(*res.Keyword).Inc()
	}
	if res.SpikeLabel != nil {
		SpikesTotal.Inc()
	}
}
