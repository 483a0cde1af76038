package popularity

import "livepop-server/models/live_popularity"

// Extract runs the matcher over labels and classifies the reading. It never
// fails: missing data is reported as nil fields, and the classification is
// only attempted when both percentages were found.
func (c *Classifier) Extract(placeName string, labels []string) live_popularity.Result {
	reading := c.Match(labels)

	res := live_popularity.Result{
		PlaceName:  placeName,
		HourLabel:  reading.HourLabel,
		CurrentPct: reading.CurrentPct,
		UsualPct:   reading.UsualPct,
		RawText:    reading.RawText,
	}
	for _, s := range reading.Stages {
		res.Stages = append(res.Stages, string(s))
	}

	Reclassify(&res)
	return res
}

// Extract uses the default locales.
func Extract(placeName string, labels []string) live_popularity.Result {
	return defaultClassifier.Extract(placeName, labels)
}

// Reclassify recomputes the classification fields of res from its
// percentages. Stale values are cleared when either percentage is missing.
func Reclassify(res *live_popularity.Result) {
	res.Keyword, res.Delta, res.SpikeRatioPct, res.SpikeLabel = nil, nil, nil, nil
	if res.CurrentPct == nil || res.UsualPct == nil {
		return
	}

	cls := Classify(*res.CurrentPct, res.UsualPct)
	res.Keyword = stringPtr(string(cls.Keyword))
	res.Delta = cls.Delta
	res.SpikeRatioPct = cls.SpikeRatioPct
	res.SpikeLabel = cls.SpikeLabel()
}
