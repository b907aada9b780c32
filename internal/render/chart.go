// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package render draws ChartData as text for the terminal.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/elastic/chartcat/internal/histogram"
)

const yLabelWidth = 10

// Options controls chart layout.
type Options struct {
	// Width is the total width in cells including the y-axis labels.
	Width int
	// Height is the number of plot rows.
	Height int
	// Bar styles the plotted cells. Defaults to BarStyle.
	Bar *lipgloss.Style
	// Location is used for x-axis times. Defaults to time.Local.
	Location *time.Location
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height < 2 {
		o.Height = 2
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Bar == nil {
		o.Bar = &BarStyle
	}
	return o
}

// Chart renders a bar chart of c with a title line, y-axis labels and the
// first and last bucket times under the x-axis.
func Chart(c *histogram.ChartData, opts Options) string {
	opts = opts.normalized()

	var b strings.Builder
	b.WriteString(title(c))
	b.WriteString("\n")

	if c == nil || len(c.Values) == 0 {
		b.WriteString(MutedStyle.Render("No data points"))
		return b.String()
	}

	chartWidth := opts.Width - yLabelWidth - 2
	if chartWidth < 10 {
		chartWidth = 10
	}
	height := opts.Height

	// Counts and latencies are drawn from a zero baseline unless the data
	// goes negative.
	minVal, maxVal := 0.0, 0.0
	for _, p := range c.Values {
		minVal = math.Min(minVal, p.Y)
		maxVal = math.Max(maxVal, p.Y)
	}
	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1
	}

	samples := sample(c.Values, chartWidth)
	filled := make([]int, len(samples))
	for i, v := range samples {
		filled[i] = int(math.Round((v - minVal) / valRange * float64(height)))
	}

	// Rows are drawn top to bottom.
	for row := height - 1; row >= 0; row-- {
		rowValue := minVal + valRange*float64(row+1)/float64(height)
		b.WriteString(MutedStyle.Render(PadLeft(FormatValue(rowValue), yLabelWidth)))
		b.WriteString(" │")

		var line strings.Builder
		for _, n := range filled {
			if n > row {
				line.WriteRune('█')
			} else {
				line.WriteRune(' ')
			}
		}
		b.WriteString(opts.Bar.Render(line.String()))
		b.WriteString("\n")
	}

	// X-axis
	b.WriteString(strings.Repeat(" ", yLabelWidth))
	b.WriteString(" └")
	b.WriteString(strings.Repeat("─", chartWidth))
	b.WriteString("\n")

	layout := tickFormat(c.Ordered.Interval)
	startTime := time.UnixMilli(c.Values[0].X).In(opts.Location).Format(layout)
	endTime := time.UnixMilli(c.Values[len(c.Values)-1].X).In(opts.Location).Format(layout)
	padding := chartWidth - len(startTime) - len(endTime)
	if padding < 0 {
		padding = 0
	}
	b.WriteString(strings.Repeat(" ", yLabelWidth+2))
	b.WriteString(MutedStyle.Render(startTime))
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(MutedStyle.Render(endTime))

	return b.String()
}

func title(c *histogram.ChartData) string {
	if c == nil {
		return TitleStyle.Render("No data")
	}
	label := c.YAxisLabel
	if label == "" {
		label = "Value"
	}
	if c.Ordered.Interval <= 0 {
		return TitleStyle.Render(label)
	}
	return TitleStyle.Render(label) + MutedStyle.Render(fmt.Sprintf("  per %d%s", c.Ordered.IntervalValue, c.Ordered.IntervalUnit))
}

// sample picks width values from points by nearest index. Fewer points
// than columns are stretched.
func sample(points []histogram.Point, width int) []float64 {
	out := make([]float64, width)
	step := float64(len(points)) / float64(width)
	for i := 0; i < width; i++ {
		idx := int(float64(i) * step)
		if idx >= len(points) {
			idx = len(points) - 1
		}
		out[i] = points[idx].Y
	}
	return out
}

// Sparkline renders c as a single line of block characters.
func Sparkline(c *histogram.ChartData, width int) string {
	if c == nil || len(c.Values) == 0 {
		return strings.Repeat("-", width)
	}
	values := sample(c.Values, width)

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	// Handle constant values
	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1
	}

	var result strings.Builder
	for _, v := range values {
		charIdx := int((v - minVal) / valRange * 7)
		if charIdx > 7 {
			charIdx = 7
		}
		if charIdx < 0 {
			charIdx = 0
		}
		result.WriteRune(sparklineChars[charIdx])
	}
	return result.String()
}
