// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elastic/chartcat/internal/es/shared"
	"github.com/elastic/chartcat/internal/histogram"
)

// countSeries is the series name used while gap filling histogram buckets.
const countSeries = "count"

// BuildHistogramQuery builds a search body with a date_histogram over the
// time field. min_doc_count 0 and extended_bounds make the cluster return
// every bucket of the window, empty ones included.
func BuildHistogramQuery(opts HistogramOptions) map[string]interface{} {
	timeField := opts.timeField()

	fb := shared.NewFilterBuilder()
	gte, lte := rangeStrings(opts)
	fb.AddTimeRangeFilter(timeField, gte, lte)
	fb.AddQueryString(opts.Query, nil)
	fb.AddServiceFilter(opts.Service, false)
	fb.AddLevelFilter(opts.Level)

	dateHistogram := map[string]interface{}{
		"field":          timeField,
		"fixed_interval": fmt.Sprintf("%dms", opts.intervalMs()),
		"min_doc_count":  0,
	}
	if gte != "" && lte != "" {
		dateHistogram["extended_bounds"] = map[string]interface{}{"min": gte, "max": lte}
	}

	query := fb.Build()
	query["size"] = opts.sampleSize()
	query["track_total_hits"] = true
	query["sort"] = []map[string]interface{}{
		{timeField: map[string]interface{}{"order": "desc"}},
	}
	query["aggs"] = map[string]interface{}{
		histogram.DefaultHistogramAgg: map[string]interface{}{
			"date_histogram": dateHistogram,
		},
	}
	return query
}

func rangeStrings(opts HistogramOptions) (gte, lte string) {
	if !opts.Bounds.IsZero() {
		if !opts.Bounds.Min.IsZero() {
			gte = opts.Bounds.Min.UTC().Format(time.RFC3339Nano)
		}
		if !opts.Bounds.Max.IsZero() {
			lte = opts.Bounds.Max.UTC().Format(time.RFC3339Nano)
		}
		return gte, lte
	}
	if opts.Lookback != "" {
		return opts.Lookback, "now"
	}
	return "", ""
}

// Histogram runs the histogram search and charts the result.
func Histogram(ctx context.Context, exec Executor, opts HistogramOptions, logger *zap.Logger) (*HistogramResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := exec.GetIndex()

	queryJSON, err := json.Marshal(BuildHistogramQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}
	logger.Debug("executing log histogram", zap.String("index", index), zap.ByteString("query", queryJSON))

	res, err := exec.SearchForLogs(ctx, index, queryJSON, opts.sampleSize())
	if err != nil {
		return nil, fmt.Errorf("failed to execute histogram: %w", err)
	}
	result, err := res.Decode(queryJSON)
	if err != nil {
		return nil, err
	}
	return Chart(result, opts), nil
}

// Chart turns a search result into a log count chart. Server side
// date_histogram buckets are used when present and re-aligned onto the
// requested window; otherwise the hits themselves are counted.
func Chart(result *histogram.SearchResult, opts HistogramOptions) *HistogramResult {
	out := &HistogramResult{FieldCounts: histogram.FieldCounts(result)}
	if result != nil {
		out.Total = result.Hits.Total
		out.ElapsedMs = result.ElapsedMs
	}

	interval := opts.intervalMs()
	chart := histogram.FromDateHistogram(result, histogram.DefaultHistogramAgg, opts.timeField())
	if chart == nil {
		out.Chart = histogram.BuildSeries(result, histogram.Metric{
			Value: func(map[string]interface{}) (float64, bool) { return 1, true },
		}, histogram.SeriesOptions{
			TimeField:  opts.timeField(),
			Interval:   interval,
			Bounds:     opts.Bounds,
			XAxisLabel: opts.timeField(),
			YAxisLabel: "Count",
			Now:        opts.Now,
		})
		return out
	}

	if opts.Bounds.Min.IsZero() || opts.Bounds.Max.IsZero() {
		out.Chart = chart
		return out
	}

	samples := make([]histogram.Sample, len(chart.Values))
	for i, p := range chart.Values {
		samples[i] = histogram.Sample{Timestamp: p.X, Value: p.Y}
	}
	start := opts.Bounds.Min.UTC().Format(time.RFC3339Nano)
	end := opts.Bounds.Max.UTC().Format(time.RFC3339Nano)
	filled := histogram.FillMissingTimestamps(map[string][]histogram.Sample{countSeries: samples},
		histogram.FormatInterval(interval), start, end)[countSeries]

	points := make([]histogram.Point, len(filled))
	for i, s := range filled {
		points[i] = histogram.Point{X: s.Timestamp, Y: s.Value}
	}
	if len(points) > 1 {
		interval = points[1].X - points[0].X
	}
	out.Chart = histogram.NewChartData(histogram.FillResult{Points: points, Interval: interval},
		opts.Bounds.Min.UnixMilli(), opts.Bounds.Max.UnixMilli(), opts.timeField(), chart.YAxisLabel)
	return out
}
