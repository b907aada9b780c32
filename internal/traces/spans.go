// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"math"

	"github.com/elastic/chartcat/internal/histogram"
)

// durationFields are the span duration fields, in lookup order.
var durationFields = []string{
	"durationInNanos",
	"duration",
	"duration.nanos",
	"durationNanos",
	"attributes.duration",
}

// traceIDFields identify the trace a span belongs to.
var traceIDFields = []string{"traceId", "trace_id", "trace.id"}

// SpanOptions configures ProcessSpans.
type SpanOptions struct {
	Options
	// UniqueTraces counts distinct traces per bucket instead of spans.
	UniqueTraces bool
}

// SpanDurationMs returns the duration of a span document in milliseconds.
// Zero durations are treated as absent.
func SpanDurationMs(source map[string]interface{}) (float64, bool) {
	for _, f := range durationFields {
		v, ok := histogram.Lookup(source, f)
		if !ok {
			continue
		}
		if d, ok := histogram.ToFloat(v); ok && d != 0 {
			return NanosToMillis(d), true
		}
	}
	start, okStart := histogram.FirstNumber(source, "startTimeUnixNano")
	end, okEnd := histogram.FirstNumber(source, "endTimeUnixNano")
	if okStart && okEnd && end != start {
		return NanosToMillis(end - start), true
	}
	return 0, false
}

// ProcessSpans builds the three trace charts from raw span documents. Every
// span is one request, error spans are classified with IsErrorSpan and the
// latency is the mean span duration. All charts share one range so that
// their points line up.
func ProcessSpans(result *histogram.SearchResult, opts SpanOptions) Result {
	interval := histogram.IntervalOrDefault(opts.Interval, histogram.DefaultIntervalMs)
	res := Result{
		BucketInterval: histogram.BucketInterval{Interval: histogram.FormatInterval(interval), Scale: 1},
	}
	if result.IsEmpty() {
		return res
	}

	count := func(map[string]interface{}) (float64, bool) { return 1, true }
	requests := histogram.Metric{Value: count}
	if opts.UniqueTraces {
		requests = histogram.Metric{Kind: histogram.KindUniqueCount, IDFields: traceIDFields}
	}
	errs := histogram.Metric{Value: count, Include: IsErrorSpan}
	latency := histogram.Metric{Kind: histogram.KindAverage, Value: SpanDurationMs, SkipMissing: true}

	timeField := opts.timeField()
	reqBuckets := histogram.Accumulate(result, requests, timeField, interval)
	if reqBuckets.Len() == 0 {
		return res
	}
	errBuckets := histogram.Accumulate(result, errs, timeField, interval)
	latBuckets := histogram.Accumulate(result, latency, timeField, interval)

	start, end := histogram.ResolveRange(opts.Bounds, opts.Now, reqBuckets)
	chart := func(b *histogram.Buckets, label string) *histogram.ChartData {
		return histogram.NewChartData(histogram.Fill(b, start, end), start, end, "", label)
	}
	res.RequestChartData = chart(reqBuckets, RequestCountLabel)
	res.ErrorChartData = chart(errBuckets, ErrorCountLabel)
	res.LatencyChartData = chart(latBuckets, LatencyLabel)

	if lo, hi, ok := reqBuckets.TimeRange(); ok {
		res.TimeRange = histogram.Bounds{Min: msTime(lo), Max: msTime(hi)}
	}
	if filled := res.RequestChartData.Ordered.Interval.Milliseconds(); filled != interval {
		res.BucketInterval.Interval = histogram.FormatInterval(filled)
	}
	return res
}

// Summary holds the headline numbers shown above the trace charts.
type Summary struct {
	TotalRequests     float64
	TotalErrors       float64
	ErrorPercentage   float64
	RequestsPerSecond float64
}

// Summarize totals the request and error charts of res. The request rate
// is measured over the observed span time range, or over the charted range
// when res carries none.
func Summarize(res Result) Summary {
	var s Summary
	s.TotalRequests = res.RequestChartData.Total()
	s.TotalErrors = res.ErrorChartData.Total()
	if s.TotalRequests > 0 {
		s.ErrorPercentage = round1(s.TotalErrors / s.TotalRequests * 100)
	}

	var seconds float64
	switch {
	case !res.TimeRange.Min.IsZero() && !res.TimeRange.Max.IsZero():
		seconds = res.TimeRange.Max.Sub(res.TimeRange.Min).Seconds()
	case res.RequestChartData != nil && len(res.RequestChartData.Values) > 0:
		o := res.RequestChartData.Ordered
		seconds = (o.Max.Sub(o.Min) + o.Interval).Seconds()
	}
	if seconds > 0 {
		s.RequestsPerSecond = round1(s.TotalRequests / seconds)
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
