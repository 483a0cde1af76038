package util

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"livepop-server/models/live_popularity"
)

// WriteResultsTable prints one row per result.
func WriteResultsTable(w io.Writer, results []live_popularity.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Place", "Hour", "Current", "Usual", "Delta", "Keyword", "Spike"})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.PlaceName,
			stringOrDash(r.HourLabel),
			percentOrDash(r.CurrentPct),
			percentOrDash(r.UsualPct),
			intOrDash(r.Delta),
			stringOrDash(r.Keyword),
			stringOrDash(r.SpikeLabel),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func stringOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func percentOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n) + "%"
}
