// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"time"

	"github.com/elastic/chartcat/internal/histogram"
)

// DefaultTimeField is the log timestamp field.
const DefaultTimeField = "@timestamp"

// DefaultSampleSize is how many hits are fetched alongside the histogram
// for field statistics.
const DefaultSampleSize = 100

// HistogramOptions configures a log count histogram.
type HistogramOptions struct {
	TimeField string
	// Interval is an interval string such as "1m" or "auto".
	Interval string
	// Bounds is the charted range. When zero, Lookback ending now is used.
	Bounds histogram.Bounds
	// Lookback is date math such as "now-15m".
	Lookback string
	// Query is a Lucene query string.
	Query   string
	Service string
	Level   string
	// SampleSize is the number of hits returned with the aggregation.
	// Negative means none.
	SampleSize int
	Now        func() time.Time
}

func (o HistogramOptions) timeField() string {
	if o.TimeField == "" {
		return DefaultTimeField
	}
	return o.TimeField
}

func (o HistogramOptions) intervalMs() int64 {
	return histogram.IntervalOrDefault(o.Interval, histogram.DefaultIntervalMs)
}

func (o HistogramOptions) sampleSize() int {
	switch {
	case o.SampleSize < 0:
		return 0
	case o.SampleSize == 0:
		return DefaultSampleSize
	default:
		return o.SampleSize
	}
}

// HistogramResult is a log count chart plus the statistics shown with it.
type HistogramResult struct {
	Chart       *histogram.ChartData
	Total       int64
	FieldCounts map[string]int
	ElapsedMs   int64
}
