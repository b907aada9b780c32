// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/histogram"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// Traces writes the request, error and latency charts of res followed by
// the summary line. A metric without a series is reported as having no data.
func Traces(w io.Writer, res tracecharts.Result, opts Options) error {
	var b strings.Builder
	if res.BucketInterval.Interval != "" {
		b.WriteString(MutedStyle.Render("Interval " + res.BucketInterval.Interval))
		b.WriteString("\n\n")
	}

	series := []struct {
		label string
		chart *histogram.ChartData
		style lipgloss.Style
	}{
		{tracecharts.RequestCountLabel, res.RequestChartData, BarStyle},
		{tracecharts.ErrorCountLabel, res.ErrorChartData, ErrorBarStyle},
		{tracecharts.LatencyLabel, res.LatencyChartData, LatencyBarStyle},
	}
	for _, s := range series {
		if s.chart == nil {
			b.WriteString(TitleStyle.Render(s.label))
			b.WriteString(" ")
			b.WriteString(MutedStyle.Render("no data"))
			b.WriteString("\n\n")
			continue
		}
		o := opts
		style := s.style
		o.Bar = &style
		b.WriteString(Chart(s.chart, o))
		b.WriteString("\n\n")
	}

	b.WriteString(TraceSummary(tracecharts.Summarize(res)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Logs writes the log count chart and its summary.
func Logs(w io.Writer, res *logs.HistogramResult, opts Options) error {
	var chart *histogram.ChartData
	if res != nil {
		chart = res.Chart
	}
	_, err := fmt.Fprintf(w, "%s\n\n%s\n", Chart(chart, opts), LogSummary(res))
	return err
}

const compactLabelWidth = 18

// TracesCompact writes one sparkline row per trace chart instead of the
// full charts, followed by the summary line.
func TracesCompact(w io.Writer, res tracecharts.Result, opts Options) error {
	opts = opts.normalized()
	var b strings.Builder
	b.WriteString(compactRow(tracecharts.RequestCountLabel, res.RequestChartData, opts.Width, BarStyle))
	b.WriteString(compactRow(tracecharts.ErrorCountLabel, res.ErrorChartData, opts.Width, ErrorBarStyle))
	b.WriteString(compactRow(tracecharts.LatencyLabel, res.LatencyChartData, opts.Width, LatencyBarStyle))
	b.WriteString(TraceSummary(tracecharts.Summarize(res)))
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// LogsCompact is the sparkline form of Logs.
func LogsCompact(w io.Writer, res *logs.HistogramResult, opts Options) error {
	opts = opts.normalized()
	var chart *histogram.ChartData
	label := "Count"
	if res != nil && res.Chart != nil {
		chart = res.Chart
		label = chart.YAxisLabel
	}
	_, err := fmt.Fprintf(w, "%s%s\n", compactRow(label, chart, opts.Width, BarStyle), LogSummary(res))
	return err
}

// compactRow renders label, a sparkline and the peak value on one line.
func compactRow(label string, c *histogram.ChartData, width int, style lipgloss.Style) string {
	sparkWidth := width - compactLabelWidth - 12
	if sparkWidth < 4 {
		sparkWidth = 4
	}
	peak := "-"
	if c != nil && len(c.Values) > 0 {
		maxVal := c.Values[0].Y
		for _, p := range c.Values[1:] {
			maxVal = math.Max(maxVal, p.Y)
		}
		peak = "max " + FormatValue(maxVal)
	}
	return PadRight(TitleStyle.Render(label), compactLabelWidth) +
		style.Render(Sparkline(c, sparkWidth)) + " " + MutedStyle.Render(peak) + "\n"
}
