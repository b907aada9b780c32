// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package traces builds request, error and latency charts from span data,
// either pre-aggregated per time bucket or as raw span documents.
package traces

import (
	"time"

	"github.com/elastic/chartcat/internal/histogram"
)

// DefaultTimeField is the span end time, used when no time field is configured.
const DefaultTimeField = "endTime"

// Axis labels of the three trace charts.
const (
	RequestCountLabel = "Request Count"
	ErrorCountLabel   = "Error Count"
	LatencyLabel      = "Avg Latency (ms)"
)

// Column names of pre-aggregated rows, in lookup order.
var (
	requestCountFields = []string{"request_count", "count()"}
	errorCountFields   = []string{"error_count", "count()"}
	latencyFields      = []string{"avg_latency_ms", "avg_duration_nanos"}
)

// nanosThreshold separates nanosecond latencies from millisecond ones. No
// realistic millisecond latency exceeds 1e6 (about 17 minutes).
const nanosThreshold = 1_000_000

// NanosToMillis converts v to milliseconds when it looks like nanoseconds.
func NanosToMillis(v float64) float64 {
	if v > nanosThreshold {
		return v / 1e6
	}
	return v
}

// Options controls how trace results are bucketed and bounded.
type Options struct {
	// TimeField is used when rows carry no span grouping key.
	TimeField string
	// Interval is the configured bucket interval, e.g. "5m" or "auto".
	Interval string
	// Bounds is the active time filter. Zero means derive it from the data.
	Bounds histogram.Bounds
	// Now is the clock used for the default range.
	Now func() time.Time
}

func (o Options) timeField() string {
	if o.TimeField == "" {
		return DefaultTimeField
	}
	return o.TimeField
}

// Result holds the three trace charts. A chart is nil when its input was.
type Result struct {
	RequestChartData *histogram.ChartData
	ErrorChartData   *histogram.ChartData
	LatencyChartData *histogram.ChartData
	BucketInterval   histogram.BucketInterval
	// TimeRange is the span time range observed in raw span input.
	TimeRange histogram.Bounds
}

func msTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// RequestMetric sums request counts of pre-aggregated rows.
func RequestMetric() histogram.Metric {
	return histogram.Metric{Fields: requestCountFields, Kind: histogram.KindSum}
}

// ErrorMetric sums error counts of pre-aggregated rows. The rows are
// expected to be filtered to error spans already.
func ErrorMetric() histogram.Metric {
	return histogram.Metric{Fields: errorCountFields, Kind: histogram.KindSum}
}

// LatencyMetric averages the per-bucket latency of pre-aggregated rows in ms.
func LatencyMetric() histogram.Metric {
	return histogram.Metric{
		Fields:    latencyFields,
		Kind:      histogram.KindAverage,
		Transform: NanosToMillis,
	}
}

// ProcessAggregationResults turns the rows of the request, error and latency
// queries into gap-filled charts. Each result may be nil. The interval of a
// result is the one embedded in its span grouping key, falling back to
// opts.Interval and then to the default. All charts cover one range, the
// union of their data when opts.Bounds is open, and BucketInterval reports
// the interval of the first chart after any widening.
func ProcessAggregationResults(request, errs, latency *histogram.SearchResult, opts Options) Result {
	configured := histogram.IntervalOrDefault(opts.Interval, histogram.DefaultIntervalMs)

	series := []struct {
		result *histogram.SearchResult
		metric histogram.Metric
		label  string
		chart  **histogram.ChartData
		b      *histogram.Buckets
	}{
		{result: request, metric: RequestMetric(), label: RequestCountLabel},
		{result: errs, metric: ErrorMetric(), label: ErrorCountLabel},
		{result: latency, metric: LatencyMetric(), label: LatencyLabel},
	}
	var res Result
	series[0].chart = &res.RequestChartData
	series[1].chart = &res.ErrorChartData
	series[2].chart = &res.LatencyChartData

	var all []*histogram.Buckets
	for i := range series {
		s := &series[i]
		if s.result == nil {
			continue
		}
		interval := histogram.ExtractSpanIntervalMs(s.result, configured)
		s.b = histogram.Accumulate(s.result, s.metric, opts.timeField(), interval)
		all = append(all, s.b)
	}
	start, end := histogram.ResolveRange(opts.Bounds, opts.Now, all...)

	used := configured
	first := true
	for _, s := range series {
		if s.b == nil {
			continue
		}
		filled := histogram.Fill(s.b, start, end)
		if first {
			used = filled.Interval
			first = false
		}
		*s.chart = histogram.NewChartData(filled, start, end, "", s.label)
	}

	res.BucketInterval = histogram.BucketInterval{Interval: histogram.FormatInterval(used), Scale: 1}
	return res
}
