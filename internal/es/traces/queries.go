// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"fmt"
	"strings"

	"github.com/elastic/chartcat/internal/es/shared"
	"github.com/elastic/chartcat/internal/histogram"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// Defaults for span documents written by Data Prepper's otel-trace pipeline.
const (
	DefaultDurationField  = "durationInNanos"
	DefaultErrorCondition = "status.code == 2"
	// maxBuckets caps the STATS output; ES|QL truncates at 1000 rows otherwise.
	maxBuckets = 10000
)

// QueryOptions describes the window and grouping of the trace queries.
type QueryOptions struct {
	Index      string
	TimeField  string
	IntervalMs int64
	// Bounds restricts the time field. When zero, Lookback is used instead.
	Bounds histogram.Bounds
	// Lookback is date math such as "now-15m".
	Lookback string
	Service  string
	// DurationField holds the span duration in nanoseconds.
	DurationField string
	// ErrorCondition is an ES|QL boolean expression selecting error spans.
	ErrorCondition string
}

func (o QueryOptions) timeField() string {
	if o.TimeField == "" {
		return tracecharts.DefaultTimeField
	}
	return o.TimeField
}

func (o QueryOptions) interval() int64 {
	if !histogram.ValidInterval(o.IntervalMs) {
		return histogram.DefaultIntervalMs
	}
	return o.IntervalMs
}

// SpanKey is the grouping column every trace query emits, e.g.
// "span(endTime,5m)". The engine reads the bucket interval back from it.
func SpanKey(timeField string, intervalMs int64) string {
	return fmt.Sprintf("span(%s,%s)", timeField, histogram.FormatInterval(intervalMs))
}

// RequestQuery counts spans per bucket into a `count()` column.
func RequestQuery(opts QueryOptions) string {
	return statsQuery(opts, "", "`count()` = COUNT(*)")
}

// ErrorQuery counts error spans per bucket into an error_count column.
func ErrorQuery(opts QueryOptions) string {
	cond := opts.ErrorCondition
	if cond == "" {
		cond = DefaultErrorCondition
	}
	return statsQuery(opts, cond, "error_count = COUNT(*)")
}

// LatencyQuery averages span durations per bucket into avg_latency_ms. The
// duration field holds nanoseconds, so the average is scaled server side
// and sub-millisecond buckets are not mistaken for nanoseconds.
func LatencyQuery(opts QueryOptions) string {
	field := opts.DurationField
	if field == "" {
		field = DefaultDurationField
	}
	return statsQuery(opts, "", fmt.Sprintf("avg_latency_ms = AVG(%s) / 1000000.0", field))
}

func statsQuery(opts QueryOptions, extra, stats string) string {
	timeField := opts.timeField()
	interval := opts.interval()
	key := shared.QuoteESQLIdentifier(SpanKey(timeField, interval))

	where := whereClauses(opts)
	if extra != "" {
		where = append(where, extra)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n", opts.Index)
	if len(where) > 0 {
		fmt.Fprintf(&b, "| WHERE %s\n", strings.Join(where, "\n  AND "))
	}
	fmt.Fprintf(&b, "| STATS %s BY %s = BUCKET(%s, %s)\n", stats, key, timeField, shared.MillisToESQLDuration(interval))
	fmt.Fprintf(&b, "| SORT %s\n", key)
	fmt.Fprintf(&b, "| LIMIT %d", maxBuckets)
	return b.String()
}

func whereClauses(opts QueryOptions) []string {
	timeField := opts.timeField()
	var where []string
	switch {
	case !opts.Bounds.IsZero():
		if !opts.Bounds.Min.IsZero() {
			where = append(where, fmt.Sprintf("%s >= %s", timeField, shared.ESQLDatetime(opts.Bounds.Min)))
		}
		if !opts.Bounds.Max.IsZero() {
			where = append(where, fmt.Sprintf("%s <= %s", timeField, shared.ESQLDatetime(opts.Bounds.Max)))
		}
	case opts.Lookback != "":
		where = append(where, fmt.Sprintf("%s >= NOW() - %s", timeField, shared.LookbackToESQLInterval(opts.Lookback)))
	}
	if opts.Service != "" {
		where = append(where, fmt.Sprintf("serviceName == \"%s\"", shared.EscapeESQLString(opts.Service)))
	}
	return where
}

// SpanSearchBody builds the _search body used to fetch raw spans.
func SpanSearchBody(opts QueryOptions) map[string]interface{} {
	timeField := opts.timeField()
	fb := shared.NewFilterBuilder()
	if !opts.Bounds.IsZero() {
		var gte, lte string
		if !opts.Bounds.Min.IsZero() {
			gte = opts.Bounds.Min.UTC().Format(rfc3339Millis)
		}
		if !opts.Bounds.Max.IsZero() {
			lte = opts.Bounds.Max.UTC().Format(rfc3339Millis)
		}
		fb.AddTimeRangeFilter(timeField, gte, lte)
	} else {
		fb.AddTimeRangeFilter(timeField, opts.Lookback, "")
	}
	fb.AddServiceFilter(opts.Service, false)

	body := fb.Build()
	body["sort"] = []map[string]interface{}{
		{timeField: map[string]interface{}{"order": "desc"}},
	}
	return body
}

const rfc3339Millis = "2006-01-02T15:04:05.000Z07:00"
