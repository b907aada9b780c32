// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import "sort"

// DefaultHistogramAgg is the aggregation name used for count histograms.
const DefaultHistogramAgg = "histogram"

// FromDateHistogram converts server-side date_histogram buckets into
// ChartData. The interval is taken from the distance between the first two
// buckets. It returns nil when the aggregation is absent.
func FromDateHistogram(result *SearchResult, aggName, xAxisLabel string) *ChartData {
	if result == nil || result.Aggregations == nil {
		return nil
	}
	if aggName == "" {
		aggName = DefaultHistogramAgg
	}
	agg, ok := result.Aggregations[aggName].(map[string]interface{})
	if !ok {
		return nil
	}
	rawBuckets, ok := agg["buckets"].([]interface{})
	if !ok {
		return nil
	}

	points := make([]Point, 0, len(rawBuckets))
	for _, rb := range rawBuckets {
		bucket, ok := rb.(map[string]interface{})
		if !ok {
			continue
		}
		key, ok := ToFloat(bucket["key"])
		if !ok {
			continue
		}
		count, _ := ToFloat(bucket["doc_count"])
		points = append(points, Point{X: int64(key), Y: count})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })

	var interval int64
	if len(points) > 1 {
		interval = points[1].X - points[0].X
	}
	var start, end int64
	if len(points) > 0 {
		start, end = points[0].X, points[len(points)-1].X
	}
	return NewChartData(FillResult{Points: points, Interval: interval}, start, end, xAxisLabel, "Count")
}

// FieldCounts counts in how many hits each top-level field appears.
func FieldCounts(result *SearchResult) map[string]int {
	counts := make(map[string]int)
	if result.IsEmpty() {
		return counts
	}
	for _, hit := range result.Hits.Hits {
		for name := range hit.Source {
			counts[name]++
		}
	}
	return counts
}
