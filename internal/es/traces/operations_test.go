// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elastic/chartcat/internal/es/shared"
	"github.com/elastic/chartcat/internal/histogram"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// mockExecutor implements the Executor interface for testing
type mockExecutor struct {
	mu             sync.Mutex
	index          string
	searchResponse *shared.SearchResponse
	searchErr      error
	lastSearchBody []byte
	lastSize       int
	// esql maps a substring of the query to its result or error.
	esql        map[string]*shared.ESQLResult
	esqlErr     map[string]error
	esqlQueries []string
}

func (m *mockExecutor) GetIndex() string {
	return m.index
}

func (m *mockExecutor) SearchForTraces(ctx context.Context, index string, body []byte, size int) (*shared.SearchResponse, error) {
	m.lastSearchBody = body
	m.lastSize = size
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResponse, nil
}

func (m *mockExecutor) ExecuteESQLQuery(ctx context.Context, query string) (*shared.ESQLResult, error) {
	m.mu.Lock()
	m.esqlQueries = append(m.esqlQueries, query)
	m.mu.Unlock()
	for marker, err := range m.esqlErr {
		if strings.Contains(query, marker) {
			return nil, err
		}
	}
	for marker, res := range m.esql {
		if strings.Contains(query, marker) {
			return res, nil
		}
	}
	return shared.EmptyESQLResult(), nil
}

func rows(metric string, values ...[]interface{}) *shared.ESQLResult {
	return &shared.ESQLResult{
		Columns: []shared.ESQLColumn{
			{Name: metric, Type: "double"},
			{Name: "span(endTime,5m)", Type: "date"},
		},
		Values: values,
	}
}

var window = FetchOptions{
	QueryOptions: QueryOptions{
		Bounds: boundsOf("2023-01-01T00:00:00Z", "2023-01-01T00:15:00Z"),
	},
	Interval: "5m",
}

func boundsOf(min, max string) histogram.Bounds {
	lo, _ := time.Parse(time.RFC3339, min)
	hi, _ := time.Parse(time.RFC3339, max)
	return histogram.Bounds{Min: lo, Max: hi}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{
		index: "otel-v1-apm-span-*",
		esql: map[string]*shared.ESQLResult{
			"`count()` = COUNT(*)": rows("count()",
				[]interface{}{150.0, "2023-01-01T00:00:00.000Z"},
				[]interface{}{200.0, "2023-01-01T00:05:00.000Z"},
			),
			"error_count = COUNT(*)": rows("error_count",
				[]interface{}{3.0, "2023-01-01T00:05:00.000Z"},
			),
			"avg_latency_ms": rows("avg_latency_ms",
				[]interface{}{1.5, "2023-01-01T00:00:00.000Z"},
				[]interface{}{0.5, "2023-01-01T00:05:00.000Z"},
			),
		},
	}

	res, err := Fetch(context.Background(), exec, window, nil)
	require.NoError(t, err)
	require.Len(t, exec.esqlQueries, 3)

	require.NotNil(t, res.RequestChartData)
	assert.Equal(t, tracecharts.RequestCountLabel, res.RequestChartData.YAxisLabel)
	require.Len(t, res.RequestChartData.Values, 4)
	assert.Equal(t, 350.0, res.RequestChartData.Total())
	assert.Equal(t, 3.0, res.ErrorChartData.Total())
	assert.Equal(t, 1.5, res.LatencyChartData.Values[0].Y)
	assert.Equal(t, 0.5, res.LatencyChartData.Values[1].Y, "sub-millisecond averages stay in ms")
	assert.Equal(t, "5m", res.BucketInterval.Interval)
}

func TestFetchChartsWholeLookbackWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, 1, 1, 0, 15, 0, 0, time.UTC)
	exec := &mockExecutor{
		index: "otel-v1-apm-span-*",
		esql: map[string]*shared.ESQLResult{
			"`count()` = COUNT(*)": rows("count()",
				[]interface{}{4.0, "2023-01-01T00:10:00.000Z"},
				[]interface{}{6.0, "2023-01-01T00:15:00.000Z"},
			),
		},
	}
	opts := FetchOptions{
		QueryOptions: QueryOptions{Lookback: "now-15m"},
		Interval:     "5m",
		Now:          func() time.Time { return now },
	}

	res, err := Fetch(context.Background(), exec, opts, nil)
	require.NoError(t, err)
	for _, q := range exec.esqlQueries {
		assert.Contains(t, q, "endTime >= NOW() - 15 minutes")
	}

	require.NotNil(t, res.RequestChartData)
	values := res.RequestChartData.Values
	require.Len(t, values, 4, "leading quiet buckets of the lookback are charted")
	assert.Equal(t, now.Add(-15*time.Minute).UnixMilli(), values[0].X)
	assert.Equal(t, now.UnixMilli(), values[3].X)
	assert.Equal(t, []float64{0, 0, 4, 6}, []float64{values[0].Y, values[1].Y, values[2].Y, values[3].Y})
	require.NotNil(t, res.ErrorChartData)
	assert.Len(t, res.ErrorChartData.Values, 4)
}

func TestFetchEmptyStatePerMetric(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{
		index: "otel-v1-apm-span-*",
		esql: map[string]*shared.ESQLResult{
			"`count()` = COUNT(*)": rows("count()", []interface{}{1.0, "2023-01-01T00:00:00.000Z"}),
		},
		esqlErr: map[string]error{
			"avg_latency_ms": &shared.ESQLUnknownColumnError{Column: "durationInNanos"},
		},
	}

	res, err := Fetch(context.Background(), exec, window, nil)
	require.NoError(t, err)
	assert.NotNil(t, res.RequestChartData)
	assert.NotNil(t, res.ErrorChartData, "an empty result still charts zeros")
	assert.Nil(t, res.LatencyChartData)
}

func TestFetchPropagatesRealErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	exec := &mockExecutor{
		index:   "traces",
		esqlErr: map[string]error{"error_count": boom},
	}

	_, err := Fetch(context.Background(), exec, window, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error query")
}

func TestFetchSpans(t *testing.T) {
	t.Parallel()

	body := `{"hits":{"total":{"value":3},"hits":[
		{"_id":"1","_source":{"endTime":"2023-01-01T00:01:00Z","traceId":"t1","durationInNanos":2000000}},
		{"_id":"2","_source":{"endTime":"2023-01-01T00:02:00Z","traceId":"t1","durationInNanos":4000000,"status":{"code":2}}},
		{"_id":"3","_source":{"endTime":"2023-01-01T00:07:00Z","traceId":"t2","attributes":{"http.status_code":503}}}
	]}}`
	exec := &mockExecutor{
		index:          "otel-v1-apm-span-*",
		searchResponse: &shared.SearchResponse{Body: io.NopCloser(strings.NewReader(body)), StatusCode: 200},
	}

	res, err := FetchSpans(context.Background(), exec, window, 500, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 500, exec.lastSize)
	assert.Contains(t, string(exec.lastSearchBody), `"endTime"`)

	require.NotNil(t, res.RequestChartData)
	assert.Equal(t, []float64{2, 1, 0, 0}, ys(res.RequestChartData.Values))
	assert.Equal(t, []float64{1, 1, 0, 0}, ys(res.ErrorChartData.Values))
	assert.Equal(t, []float64{3, 0, 0, 0}, ys(res.LatencyChartData.Values))
}

func TestFetchSpansErrorResponse(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{
		index: "spans",
		searchResponse: &shared.SearchResponse{
			Body:    io.NopCloser(strings.NewReader(`{"error":"index_not_found_exception"}`)),
			Status:  "404 Not Found",
			IsError: true,
		},
	}

	_, err := FetchSpans(context.Background(), exec, window, 10, false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404 Not Found")
}

func ys(points []histogram.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Y
	}
	return out
}
