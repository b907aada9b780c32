// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elastic/chartcat/internal/histogram"
)

var jan1 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func rows(sources ...map[string]interface{}) *histogram.SearchResult {
	r := &histogram.SearchResult{}
	for i, s := range sources {
		r.Hits.Hits = append(r.Hits.Hits, histogram.SearchHit{ID: string(rune('a' + i)), Index: "test-index", Source: s})
	}
	r.Hits.Total = int64(len(sources))
	return r
}

func opts(interval string) Options {
	return Options{
		TimeField: "endTime",
		Interval:  interval,
		Now:       func() time.Time { return jan1.Add(time.Hour) },
	}
}

func allZero(t *testing.T, c *histogram.ChartData) {
	t.Helper()
	require.NotNil(t, c)
	require.NotEmpty(t, c.Values)
	for _, p := range c.Values {
		assert.Zero(t, p.Y)
	}
}

func TestNanosToMillis(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.5, NanosToMillis(1_500_000))
	assert.Equal(t, 2.5, NanosToMillis(2.5))
	assert.Equal(t, 1_000_000.0, NanosToMillis(1_000_000))
}

func TestProcessRequestCounts(t *testing.T) {
	t.Parallel()

	res := ProcessAggregationResults(rows(
		map[string]interface{}{"span(endTime,5m)": "2023-01-01 00:00:00", "count()": 150.0},
		map[string]interface{}{"span(endTime,5m)": "2023-01-01 00:05:00", "count()": 200.0},
	), nil, nil, opts("5m"))

	require.NotNil(t, res.RequestChartData)
	assert.Equal(t, RequestCountLabel, res.RequestChartData.YAxisLabel)
	assert.Equal(t, []histogram.Point{
		{X: jan1.UnixMilli(), Y: 150},
		{X: jan1.Add(5 * time.Minute).UnixMilli(), Y: 200},
	}, res.RequestChartData.Values)
	assert.Nil(t, res.ErrorChartData)
	assert.Nil(t, res.LatencyChartData)
	assert.Equal(t, histogram.BucketInterval{Interval: "5m", Scale: 1}, res.BucketInterval)
}

func TestProcessErrorCounts(t *testing.T) {
	t.Parallel()

	res := ProcessAggregationResults(nil, rows(
		map[string]interface{}{"span(endTime,5m)": "2023-01-01 00:00:00", "error_count": 5.0},
	), nil, opts("5m"))

	require.NotNil(t, res.ErrorChartData)
	assert.Equal(t, ErrorCountLabel, res.ErrorChartData.YAxisLabel)
	assert.Equal(t, 5.0, res.ErrorChartData.Total())
}

func TestProcessLatency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source map[string]interface{}
		want   float64
	}{
		{"milliseconds first", map[string]interface{}{"avg_latency_ms": 1.5, "avg_duration_nanos": 1_500_000.0}, 1.5},
		{"nanoseconds converted", map[string]interface{}{"avg_duration_nanos": 1_500_000.0}, 1.5},
		{"small value kept", map[string]interface{}{"avg_latency_ms": 2.5}, 2.5},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.source["span(endTime,5m)"] = "2023-01-01 00:00:00"
			res := ProcessAggregationResults(nil, nil, rows(tc.source), opts("5m"))
			require.NotNil(t, res.LatencyChartData)
			assert.Equal(t, LatencyLabel, res.LatencyChartData.YAxisLabel)
			assert.Equal(t, tc.want, res.LatencyChartData.Values[0].Y)
		})
	}
}

func TestProcessAllThree(t *testing.T) {
	t.Parallel()

	key := "span(endTime,1m)"
	res := ProcessAggregationResults(
		rows(map[string]interface{}{key: "2023-01-01 00:00:00", "count()": 100.0}),
		rows(map[string]interface{}{key: "2023-01-01 00:00:00", "error_count": 2.0}),
		rows(map[string]interface{}{key: "2023-01-01 00:00:00", "avg_latency_ms": 2.5}),
		opts("1m"),
	)

	assert.NotNil(t, res.RequestChartData)
	assert.NotNil(t, res.ErrorChartData)
	assert.NotNil(t, res.LatencyChartData)
	assert.Equal(t, "1m", res.BucketInterval.Interval)
	assert.Equal(t, time.Minute, res.RequestChartData.Ordered.Interval)
}

func TestProcessEmptyInputs(t *testing.T) {
	t.Parallel()

	res := ProcessAggregationResults(nil, nil, nil, opts("1m"))
	assert.Nil(t, res.RequestChartData)
	assert.Nil(t, res.ErrorChartData)
	assert.Nil(t, res.LatencyChartData)
	assert.Equal(t, "1m", res.BucketInterval.Interval)
}

func TestProcessMalformedRows(t *testing.T) {
	t.Parallel()

	nullSource := &histogram.SearchResult{Hits: histogram.Hits{Hits: []histogram.SearchHit{{ID: "doc-1"}}, Total: 1}}
	allZero(t, ProcessAggregationResults(nullSource, nil, nil, opts("5m")).RequestChartData)

	badTimes := rows(
		map[string]interface{}{"span(endTime,5m)": "invalid-timestamp", "count()": 100.0},
		map[string]interface{}{"span(endTime,5m)": nil, "count()": 50.0},
		map[string]interface{}{"span(endTime,5m)": "definitely-not-a-date", "count()": "not-a-number"},
	)
	allZero(t, ProcessAggregationResults(badTimes, nil, nil, opts("5m")).RequestChartData)

	noTime := rows(map[string]interface{}{"count()": 100.0, "error_count": 5.0, "avg_latency_ms": 1.5})
	res := ProcessAggregationResults(noTime, noTime, noTime, opts("5m"))
	allZero(t, res.RequestChartData)
	allZero(t, res.ErrorChartData)
	allZero(t, res.LatencyChartData)
}

func TestProcessNullMetricValues(t *testing.T) {
	t.Parallel()

	r := rows(map[string]interface{}{
		"span(endTime,5m)": "2023-01-01 00:00:00",
		"count()":          nil,
		"avg_latency_ms":   nil,
	})
	res := ProcessAggregationResults(r, r, r, opts("5m"))
	assert.Zero(t, res.RequestChartData.Values[0].Y)
	assert.Zero(t, res.ErrorChartData.Values[0].Y)
	assert.Zero(t, res.LatencyChartData.Values[0].Y)
}

func TestProcessMissingFields(t *testing.T) {
	t.Parallel()

	r := rows(map[string]interface{}{"span(endTime,5m)": "2023-01-01 00:00:00"})

	res := ProcessAggregationResults(nil, r, r, opts("5m"))
	assert.Equal(t, ErrorCountLabel, res.ErrorChartData.YAxisLabel)
	allZero(t, res.ErrorChartData)
	assert.Equal(t, LatencyLabel, res.LatencyChartData.YAxisLabel)
	allZero(t, res.LatencyChartData)
}

func TestProcessTimeFieldFallback(t *testing.T) {
	t.Parallel()

	res := ProcessAggregationResults(rows(
		map[string]interface{}{"endTime": "2023-01-01 00:02:00", "count()": 100.0},
	), nil, nil, opts("5m"))

	require.Len(t, res.RequestChartData.Values, 1)
	assert.Equal(t, histogram.Point{X: jan1.UnixMilli(), Y: 100}, res.RequestChartData.Values[0])
}

func TestProcessInvalidEmbeddedInterval(t *testing.T) {
	t.Parallel()

	res := ProcessAggregationResults(rows(
		map[string]interface{}{"span(endTime,invalid)": "2023-01-01 00:00:00", "count()": 100.0},
	), nil, nil, opts("5m"))

	require.NotNil(t, res.RequestChartData)
	assert.Equal(t, 5*time.Minute, res.RequestChartData.Ordered.Interval)
	assert.Equal(t, 100.0, res.RequestChartData.Total())
}

func TestProcessLargeRange(t *testing.T) {
	t.Parallel()

	res := ProcessAggregationResults(rows(
		map[string]interface{}{"span(endTime,1d)": "1970-01-01 00:00:00", "count()": 100.0},
		map[string]interface{}{"span(endTime,1d)": "2050-12-31 23:59:59", "count()": 200.0},
	), nil, nil, opts("1d"))

	require.NotNil(t, res.RequestChartData)
	assert.NotEmpty(t, res.RequestChartData.Values)
	assert.Less(t, len(res.RequestChartData.Values), histogram.MaxPoints)
	assert.Equal(t, 300.0, res.RequestChartData.Total())
}

func TestProcessExplicitBounds(t *testing.T) {
	t.Parallel()

	o := opts("5m")
	o.Bounds = histogram.Bounds{Min: jan1, Max: jan1.Add(30 * time.Minute)}
	res := ProcessAggregationResults(rows(
		map[string]interface{}{"span(endTime,5m)": "2023-01-01 00:10:00", "count()": 1.0},
	), nil, nil, o)

	assert.Len(t, res.RequestChartData.Values, 7)
	assert.Equal(t, jan1, res.RequestChartData.Ordered.Min)
	assert.Equal(t, jan1.Add(30*time.Minute), res.RequestChartData.Ordered.Max)
}

func TestProcessSharesRangeAcrossCharts(t *testing.T) {
	t.Parallel()

	key := "span(endTime,5m)"
	res := ProcessAggregationResults(
		rows(
			map[string]interface{}{key: "2023-01-01 00:00:00", "count()": 10.0},
			map[string]interface{}{key: "2023-01-01 00:10:00", "count()": 20.0},
		),
		nil,
		rows(map[string]interface{}{key: "2023-01-01 00:30:00", "avg_latency_ms": 4.0}),
		opts("5m"),
	)

	require.NotNil(t, res.RequestChartData)
	require.NotNil(t, res.LatencyChartData)
	assert.Nil(t, res.ErrorChartData)
	assert.Len(t, res.RequestChartData.Values, 7)
	assert.Equal(t, res.RequestChartData.XAxisOrderedValues, res.LatencyChartData.XAxisOrderedValues)
	assert.Equal(t, jan1, res.LatencyChartData.Ordered.Min)
	assert.Equal(t, jan1.Add(30*time.Minute), res.RequestChartData.Ordered.Max)
	assert.Equal(t, 30.0, res.RequestChartData.Total())
	assert.Equal(t, 4.0, res.LatencyChartData.Total())
}

func TestProcessReportsWidenedInterval(t *testing.T) {
	t.Parallel()

	key := "span(endTime,1s)"
	res := ProcessAggregationResults(rows(
		map[string]interface{}{key: "1970-01-01 00:00:00", "count()": 1.0},
		map[string]interface{}{key: "2050-12-31 23:59:59", "count()": 2.0},
	), nil, nil, opts("1s"))

	require.NotNil(t, res.RequestChartData)
	widened := res.RequestChartData.Ordered.Interval
	assert.Greater(t, widened, time.Second)
	assert.LessOrEqual(t, len(res.RequestChartData.Values), histogram.MaxPoints)
	assert.Equal(t, histogram.FormatInterval(widened.Milliseconds()), res.BucketInterval.Interval)
	assert.NotEqual(t, "1s", res.BucketInterval.Interval)
	assert.Equal(t, 3.0, res.RequestChartData.Total())
}
