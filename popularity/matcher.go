package popularity

import "strings"

// Stage names one fill strategy of the matcher.
type Stage string

const (
	StageCurrentByHour Stage = "current_by_hour"
	StageUsualByHour   Stage = "usual_by_hour"
	StageCombinedLine  Stage = "combined_line"
	StageBroadScan     Stage = "broad_scan"
)

// Reading is the normalized live popularity triple pulled out of a label
// list. Nil fields mean the data was not found.
//
// When HourLabel is set, CurrentPct and UsualPct refer to that hour. When it
// is nil they were paired by co-occurrence only.
type Reading struct {
	CurrentPct *int    `json:"current_pct"`
	UsualPct   *int    `json:"usual_pct"`
	HourLabel  *string `json:"hour_label"`
	RawText    *string `json:"raw_text"`

	// Stages lists, in order, the strategies that filled at least one field.
	Stages []Stage `json:"stages,omitempty"`
}

// Complete reports whether both percentages were found.
func (r Reading) Complete() bool {
	return r.CurrentPct != nil && r.UsualPct != nil
}

func (r Reading) filledFields() int {
	n := 0
	if r.CurrentPct != nil {
		n++
	}
	if r.UsualPct != nil {
		n++
	}
	if r.HourLabel != nil {
		n++
	}
	if r.RawText != nil {
		n++
	}
	return n
}

type matchInput struct {
	all      []string
	filtered []string
}

// fillStrategy only ever writes fields that are still nil.
type fillStrategy struct {
	stage Stage
	fill  func(c *Classifier, r Reading, in matchInput) Reading
}

var fillStrategies = []fillStrategy{
	{StageCurrentByHour, fillCurrentByHour},
	{StageUsualByHour, fillUsualByHour},
	{StageCombinedLine, fillFromCombinedLine},
	{StageBroadScan, fillFromBroadScan},
}

// Match pairs the current reading with the usual reading for the same hour,
// falling back to single-line co-occurrence and then to a scan of every label.
// labels is the full accessibility label set; busyness labels are filtered
// out of it internally. Nil or empty input yields an empty Reading.
func (c *Classifier) Match(labels []string) Reading {
	in := matchInput{
		all:      labels,
		filtered: c.filterBusyness(labels),
	}

	var r Reading
	for _, s := range fillStrategies {
		if r.Complete() {
			break
		}
		before := r.filledFields()
		r = s.fill(c, r, in)
		if r.filledFields() > before {
			r.Stages = append(r.Stages, s.stage)
		}
	}
	return r
}

// Match uses the default locales.
func Match(labels []string) Reading { return defaultClassifier.Match(labels) }

func (c *Classifier) filterBusyness(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if c.IsBusynessLabel(l) {
			out = append(out, l)
		}
	}
	return out
}

// fillCurrentByHour takes the first current label with a percent. Its leading
// hour, if any, becomes the reading's hour.
func fillCurrentByHour(c *Classifier, r Reading, in matchInput) Reading {
	if r.CurrentPct != nil {
		return r
	}
	for _, t := range in.filtered {
		if !c.DescribesCurrent(t) {
			continue
		}
		pct, err := c.percent(t)
		if err != nil {
			continue
		}
		r.CurrentPct = intPtr(pct)
		if r.RawText == nil {
			r.RawText = stringPtr(t)
		}
		if hour, ok := ExtractLeadingHour(t); ok && r.HourLabel == nil {
			r.HourLabel = stringPtr(hour)
		}
		break
	}
	return r
}

// fillUsualByHour looks for a usual label mentioning the current hour. The
// comparison is substring containment on compacted text, so "1pm" also
// matches inside "11pm".
func fillUsualByHour(c *Classifier, r Reading, in matchInput) Reading {
	if r.HourLabel == nil || r.UsualPct != nil {
		return r
	}
	needle := compactHour(*r.HourLabel)
	for _, t := range in.filtered {
		if !c.DescribesUsual(t) || !strings.Contains(compactHour(t), needle) {
			continue
		}
		pct, err := c.percent(t)
		if err != nil {
			continue
		}
		r.UsualPct = intPtr(pct)
		break
	}
	return r
}

// fillFromCombinedLine handles labels like
// "Currently 30% busy, usually 45% busy".
func fillFromCombinedLine(c *Classifier, r Reading, in matchInput) Reading {
	for _, t := range in.filtered {
		if !c.DescribesCurrent(t) || !c.DescribesUsual(t) {
			continue
		}
		if r.CurrentPct == nil {
			if pct, err := c.currentPercent(t); err == nil {
				r.CurrentPct = intPtr(pct)
				// RawText always names the label that yielded CurrentPct.
				r.RawText = stringPtr(t)
			}
		}
		if r.UsualPct == nil {
			if pct, err := c.usualPercent(t); err == nil {
				r.UsualPct = intPtr(pct)
				if r.RawText == nil {
					r.RawText = stringPtr(t)
				}
			}
		}
		if r.Complete() {
			break
		}
	}
	return r
}

// fillFromBroadScan runs over the unfiltered labels and only when no current
// reading was found so far.
func fillFromBroadScan(c *Classifier, r Reading, in matchInput) Reading {
	if r.CurrentPct != nil {
		return r
	}
	for _, t := range in.all {
		t = strings.TrimSpace(t)
		if !strings.Contains(t, "%") || !c.DescribesCurrent(t) {
			continue
		}
		pct, err := c.currentPercent(t)
		if err != nil {
			continue
		}
		r.CurrentPct = intPtr(pct)
		r.RawText = stringPtr(t)
		if r.UsualPct == nil {
			if usual, err := c.usualPercent(t); err == nil {
				r.UsualPct = intPtr(usual)
			}
		}
		break
	}
	return r
}

func intPtr(n int) *int { return &n }

func stringPtr(s string) *string { return &s }
