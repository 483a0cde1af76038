// Package metrics holds the Prometheus collectors of the scraper and the
// extraction engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "livepop"

var (
	// ScrapesTotal counts place scrapes.
	// Labels: result (live, no_reading, navigation_failed)
	ScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "scrapes_total",
			Help:      "Total number of place scrapes by result",
		},
		[]string{"result"},
	)

	// ScrapeDuration tracks how long a full place scrape takes.
	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "scrape_duration_seconds",
			Help:      "Duration of place scrapes in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	// ConsentTotal counts consent interstitial outcomes.
	// Labels: outcome (dismissed, not_present, unknown)
	ConsentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "consent_total",
			Help:      "Consent interstitial outcomes",
		},
		[]string{"outcome"},
	)

	// StageHitsTotal counts which matcher stages filled a reading.
	// Labels: stage
	StageHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "stage_hits_total",
			Help:      "Matcher stages that contributed to a reading",
		},
		[]string{"stage"},
	)

	// KeywordsTotal counts busyness keywords produced.
	// Labels: keyword
	KeywordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "keywords_total",
			Help:      "Busyness keywords produced by the classifier",
		},
		[]string{"keyword"},
	)

	// SpikesTotal counts readings at least double the usual busyness.
	SpikesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "spikes_total",
			Help:      "Readings whose current busyness is at least double the usual",
		},
	)
)
