package util

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"livepop-server/models/live_popularity"
)

// RenderLivePopularityReport writes an HTML bar chart comparing the current
// and usual busyness of each result. Missing values are drawn as empty bars.
func RenderLivePopularityReport(w io.Writer, results []live_popularity.Result) error {
	names := make([]string, 0, len(results))
	current := make([]opts.BarData, 0, len(results))
	usual := make([]opts.BarData, 0, len(results))

	for _, r := range results {
		names = append(names, r.PlaceName)
		current = append(current, barValue(r.CurrentPct, r.SpikeLabel))
		usual = append(usual, barValue(r.UsualPct, nil))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Live Popularity",
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Live popularity",
			Subtitle: fmt.Sprintf("%d places, current vs usual busyness (%%)", len(results)),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0}),
	)

	bar.SetXAxis(names).
		AddSeries("Current", current).
		AddSeries("Usual", usual)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func barValue(pct *int, spike *string) opts.BarData {
	if pct == nil {
		return opts.BarData{Value: "-"}
	}
	d := opts.BarData{Value: *pct}
	if spike != nil {
		d.Name = *spike
	}
	return d
}
