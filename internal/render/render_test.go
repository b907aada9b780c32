// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/histogram"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

var t0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func chartOf(label string, ys ...float64) *histogram.ChartData {
	points := make([]histogram.Point, len(ys))
	for i, y := range ys {
		points[i] = histogram.Point{X: t0.Add(time.Duration(i) * time.Minute).UnixMilli(), Y: y}
	}
	end := t0.Add(time.Duration(len(ys)-1) * time.Minute).UnixMilli()
	return histogram.NewChartData(histogram.FillResult{Points: points, Interval: 60000}, t0.UnixMilli(), end, "", label)
}

func TestChart(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(Chart(chartOf("Count", 0, 5, 10), Options{Width: 22, Height: 2, Location: time.UTC}))
	want := strings.Join([]string{
		"Count  per 1m",
		"      10.0 │       ███",
		"       5.0 │    ██████",
		"           └──────────",
		"            01-01 00:0001-01 00:02",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestChartEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No data\nNo data points", ansi.Strip(Chart(nil, Options{})))
	assert.Equal(t, "Count  per 1m\nNo data points",
		ansi.Strip(Chart(histogram.NewChartData(histogram.FillResult{Interval: 60000}, 0, 0, "", "Count"), Options{})))
}

func TestChartAllZero(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(Chart(chartOf("Error Count", 0, 0, 0), Options{Width: 30, Height: 3, Location: time.UTC}))
	assert.NotContains(t, out, "█")
	assert.Contains(t, out, "Error Count")
}

func TestSparkline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "▁▄█", Sparkline(chartOf("Count", 0, 5, 10), 3))
	assert.Equal(t, "▁▁▄▄██", Sparkline(chartOf("Count", 0, 5, 10), 6))
	assert.Equal(t, "▁▁▁", Sparkline(chartOf("Count", 4, 4, 4), 3))
	assert.Equal(t, "----", Sparkline(nil, 4))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.NaN(), "-"},
		{0.005, "0.005"},
		{0.25, "0.25"},
		{1.5, "1.5"},
		{1500, "1.5K"},
		{-2_500_000, "-2.5M"},
		{3_000_000_000, "3.0G"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatValue(tc.in), "FormatValue(%v)", tc.in)
	}
}

func TestPadding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "   ab", PadLeft("ab", 5))
	assert.Equal(t, "abc", PadLeft("abcdef", 3))
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcd…", PadRight("abcdefgh", 5))
	assert.Equal(t, 5, ansi.StringWidth(PadLeft(TitleStyle.Render("ab"), 5)))
}

func TestTickFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "15:04:05", tickFormat(30*time.Second))
	assert.Equal(t, "01-02 15:04", tickFormat(5*time.Minute))
	assert.Equal(t, "2006-01-02", tickFormat(24*time.Hour))
}

func TestTraceSummary(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(TraceSummary(tracecharts.Summary{
		TotalRequests:     1234,
		TotalErrors:       12,
		ErrorPercentage:   1,
		RequestsPerSecond: 3.21,
	}))
	assert.Equal(t, "Requests 1,234 total (3.2 req/s)   Errors 12 total (1.0%)", out)
}

func TestLogSummary(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(LogSummary(&logs.HistogramResult{
		Total:     12345,
		ElapsedMs: 7,
		FieldCounts: map[string]int{
			"message": 100, "@timestamp": 100, "level": 98, "trace.id": 3,
			"a": 1, "b": 1,
		},
	}))
	assert.Equal(t, "Logs 12,345 total in 7ms\nFields @timestamp (100) message (100) level (98) trace.id (3) a (1)", out)
	assert.Equal(t, "No results", ansi.Strip(LogSummary(nil)))
}

func TestTraces(t *testing.T) {
	t.Parallel()

	res := tracecharts.Result{
		RequestChartData: chartOf(tracecharts.RequestCountLabel, 10, 20),
		LatencyChartData: chartOf(tracecharts.LatencyLabel, 1.5, 2.5),
		BucketInterval:   histogram.BucketInterval{Interval: "1m", Scale: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Traces(&buf, res, Options{Width: 40, Height: 3, Location: time.UTC}))
	out := ansi.Strip(buf.String())

	assert.True(t, strings.HasPrefix(out, "Interval 1m\n\nRequest Count  per 1m\n"))
	assert.Contains(t, out, "Error Count no data")
	assert.Contains(t, out, "Avg Latency (ms)  per 1m")
	assert.Contains(t, out, "Requests 30 total")
	assert.Contains(t, out, "Errors 0 total (0.0%)")
}

func TestLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Logs(&buf, &logs.HistogramResult{Chart: chartOf("Count", 1, 2), Total: 3}, Options{Width: 40, Height: 2, Location: time.UTC}))
	out := ansi.Strip(buf.String())
	assert.True(t, strings.HasPrefix(out, "Count  per 1m\n"))
	assert.True(t, strings.HasSuffix(out, "Logs 3 total\n"))
}

func TestTracesCompact(t *testing.T) {
	t.Parallel()

	res := tracecharts.Result{
		RequestChartData: chartOf(tracecharts.RequestCountLabel, 10, 20),
		LatencyChartData: chartOf(tracecharts.LatencyLabel, 1.5, 2.5),
	}

	var buf bytes.Buffer
	require.NoError(t, TracesCompact(&buf, res, Options{Width: 40}))
	lines := strings.Split(ansi.Strip(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Request Count     ▁▁▁▁▁█████ max 20.0", lines[0])
	assert.Equal(t, "Error Count       ---------- -", lines[1])
	assert.Equal(t, "Avg Latency (ms)  ▁▁▁▁▁█████ max 2.5", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Requests 30 total"))
	assert.Equal(t, "", lines[4])
}

func TestLogsCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, LogsCompact(&buf, &logs.HistogramResult{Chart: chartOf("Count", 0, 4), Total: 4}, Options{Width: 34}))
	assert.Equal(t, "Count             ▁▁██ max 4.0\nLogs 4 total\n", ansi.Strip(buf.String()))
}
