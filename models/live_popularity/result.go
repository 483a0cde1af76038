package live_popularity

import "time"

// Result is the record produced for one place per scrape attempt. Nil fields
// mean the data was unavailable.
type Result struct {
	PlaceID   string `json:"place_id,omitempty"`
	PlaceName string `json:"place_name"`
	PlaceURL  string `json:"place_url,omitempty"`

	HourLabel  *string `json:"hour_label"`
	CurrentPct *int    `json:"current_pct"`
	UsualPct   *int    `json:"usual_pct"`
	RawText    *string `json:"raw_text"`

	Keyword       *string `json:"keyword"`
	Delta         *int    `json:"delta"`
	SpikeRatioPct *int    `json:"spike_ratio_pct"`
	SpikeLabel    *string `json:"spike_label"`

	Stages []string    `json:"stages,omitempty"`
	Scrape *ScrapeInfo `json:"scrape,omitempty"`
}

// ScrapeInfo describes how the labels behind a Result were collected.
type ScrapeInfo struct {
	ScrapeID       string    `json:"scrape_id"`
	ScrapedAt      time.Time `json:"scraped_at"`
	Consent        string    `json:"consent"`
	SectionVisible string    `json:"section_visible"`
	LabelCount     int       `json:"label_count"`
}

// HasLiveReading reports whether a current busyness value was found.
func (r *Result) HasLiveReading() bool {
	return r.CurrentPct != nil
}

// CurrentOrZero is used for sorting places by live busyness.
func (r *Result) CurrentOrZero() int {
	if r.CurrentPct == nil {
		return 0
	}
	return *r.CurrentPct
}
