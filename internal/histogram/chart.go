// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import (
	"time"
)

// DefaultLookback is the range charted when neither the caller nor the data
// provides one.
const DefaultLookback = 15 * time.Minute

// DateFormatPattern is the x-axis tick pattern for date histograms.
const DateFormatPattern = "YYYY-MM-DD HH:mm"

// SeriesOptions configures how a single metric is turned into ChartData.
type SeriesOptions struct {
	TimeField  string
	Interval   int64
	Bounds     Bounds
	XAxisLabel string
	YAxisLabel string
	// Now anchors the default range when no bounds and no data exist.
	Now func() time.Time
}

// ResolveRange picks the inclusive [start, end] range to fill: explicit
// bounds first, the observed data next, and finally the DefaultLookback
// window ending at now. A half-open bound is completed from the data or now.
// The data range is the union over every bs, so charts built from several
// metrics share one x axis.
func ResolveRange(bounds Bounds, now func() time.Time, bs ...*Buckets) (start, end int64) {
	if now == nil {
		now = time.Now
	}
	var dataMin, dataMax int64
	hasData := false
	for _, b := range bs {
		lo, hi, ok := b.TimeRange()
		if !ok {
			continue
		}
		if !hasData || lo < dataMin {
			dataMin = lo
		}
		if !hasData || hi > dataMax {
			dataMax = hi
		}
		hasData = true
	}

	switch {
	case !bounds.Min.IsZero():
		start = bounds.Min.UnixMilli()
	case hasData:
		start = dataMin
	}
	switch {
	case !bounds.Max.IsZero():
		end = bounds.Max.UnixMilli()
	case hasData:
		end = dataMax
	}

	if bounds.Min.IsZero() && !hasData {
		ref := now()
		if !bounds.Max.IsZero() {
			ref = bounds.Max
		}
		start = ref.Add(-DefaultLookback).UnixMilli()
	}
	if bounds.Max.IsZero() && !hasData {
		end = now().UnixMilli()
		if end < start {
			end = start + DefaultLookback.Milliseconds()
		}
	}
	return start, end
}

// BuildSeries runs accumulation, range resolution and gap filling for one metric.
func BuildSeries(result *SearchResult, metric Metric, opts SeriesOptions) *ChartData {
	interval := opts.Interval
	if !ValidInterval(interval) {
		interval = DefaultIntervalMs
	}
	b := Accumulate(result, metric, opts.TimeField, interval)
	start, end := ResolveRange(opts.Bounds, opts.Now, b)
	return NewChartData(Fill(b, start, end), start, end, opts.XAxisLabel, opts.YAxisLabel)
}

// NewChartData wraps a filled series with axis metadata. start and end are
// used for the axis extent when the series is empty.
func NewChartData(filled FillResult, start, end int64, xAxisLabel, yAxisLabel string) *ChartData {
	values := filled.Points
	if values == nil {
		values = []Point{}
	}
	ordered := make([]int64, len(values))
	for i, p := range values {
		ordered[i] = p.X
	}

	minMs, maxMs := start, end
	if len(values) > 0 {
		minMs = values[0].X
		maxMs = values[len(values)-1].X
	}
	unit, value := IntervalUnit(filled.Interval)

	if xAxisLabel == "" {
		xAxisLabel = "Time"
	}
	return &ChartData{
		Values:             values,
		XAxisOrderedValues: ordered,
		XAxisFormat:        XAxisFormat{ID: "date", Pattern: DateFormatPattern},
		XAxisLabel:         xAxisLabel,
		YAxisLabel:         yAxisLabel,
		Ordered: Ordered{
			Date:          true,
			Interval:      time.Duration(filled.Interval) * time.Millisecond,
			IntervalUnit:  unit,
			IntervalValue: value,
			Min:           time.UnixMilli(minMs).UTC(),
			Max:           time.UnixMilli(maxMs).UTC(),
		},
	}
}

// Total sums the y values of a series.
func (c *ChartData) Total() float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, p := range c.Values {
		total += p.Y
	}
	return total
}
