// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package histogram turns search hits into gap-filled, time-bucketed series
// ready for charting. Everything in this package is synchronous and
// allocation-local: each call builds its own maps and never mutates inputs.
package histogram

import "time"

// SearchHit is one retrieved document.
type SearchHit struct {
	ID     string
	Index  string
	Source map[string]interface{}
}

// Hits is the hits envelope of a search response.
type Hits struct {
	Hits  []SearchHit
	Total int64
}

// FieldSchema describes a column or mapped field of a result set.
type FieldSchema struct {
	Name string
	Type string
}

// SearchResult is the read-only output of a single query execution.
type SearchResult struct {
	Hits         Hits
	Aggregations map[string]interface{}
	ElapsedMs    int64
	FieldSchema  []FieldSchema
}

// IsEmpty reports whether the result carries no hits.
func (r *SearchResult) IsEmpty() bool {
	return r == nil || len(r.Hits.Hits) == 0
}

// Point is a single chart coordinate. X is epoch milliseconds.
type Point struct {
	X int64   `json:"x"`
	Y float64 `json:"y"`
}

// XAxisFormat names the formatter used for x-axis ticks.
type XAxisFormat struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern,omitempty"`
}

// Ordered carries the interval metadata of a date x-axis.
type Ordered struct {
	Date          bool          `json:"date"`
	Interval      time.Duration `json:"interval"`
	IntervalUnit  string        `json:"intervalUnit"`
	IntervalValue int64         `json:"intervalValue"`
	Min           time.Time     `json:"min"`
	Max           time.Time     `json:"max"`
}

// ChartData is one chart-ready series. It is never mutated after it is returned.
type ChartData struct {
	Values             []Point     `json:"values"`
	XAxisOrderedValues []int64     `json:"xAxisOrderedValues"`
	XAxisFormat        XAxisFormat `json:"xAxisFormat"`
	XAxisLabel         string      `json:"xAxisLabel"`
	YAxisLabel         string      `json:"yAxisLabel"`
	Ordered            Ordered     `json:"ordered"`
}

// BucketInterval describes the interval used to bucket a set of series,
// for display in chart headers.
type BucketInterval struct {
	Interval string  `json:"interval"`
	Scale    float64 `json:"scale"`
}

// Bounds is an inclusive time range. A zero Min or Max means unbounded on that side.
type Bounds struct {
	Min time.Time
	Max time.Time
}

// IsZero reports whether neither side of the range is set.
func (b Bounds) IsZero() bool {
	return b.Min.IsZero() && b.Max.IsZero()
}
