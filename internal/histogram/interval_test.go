// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import (
	"fmt"
	"testing"
)

func TestParseInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		wantMs int64
		wantOK bool
	}{
		{"5s", 5000, true},
		{"30s", 30000, true},
		{"1m", 60000, true},
		{"5m", 300000, true},
		{"1h", 3600000, true},
		{"2h", 7200000, true},
		{"1d", 86400000, true},
		{"s", 1000, true},
		{"m", 60000, true},
		{"h", 3600000, true},
		{"d", 86400000, true},
		{"auto", 60000, true},
		{" 10m ", 600000, true},

		{"", 0, false},
		{"invalid", 0, false},
		{"5x", 0, false},
		{"0m", 0, false},
		{"-5m", 0, false},
		{"1.5h", 0, false},
		{"5 m", 0, false},
		{"5M", 0, false},
		{"99999999999999999999d", 0, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			t.Parallel()
			got, ok := ParseInterval(tc.input)
			if ok != tc.wantOK || got != tc.wantMs {
				t.Errorf("ParseInterval(%q) = (%d, %v), want (%d, %v)", tc.input, got, ok, tc.wantMs, tc.wantOK)
			}
		})
	}
}

func TestParseIntervalMultiples(t *testing.T) {
	t.Parallel()

	for unit, ms := range unitMs {
		for v := int64(1); v <= 120; v++ {
			got, ok := ParseInterval(fmt.Sprintf("%d%s", v, unit))
			if !ok || got != v*ms {
				t.Fatalf("ParseInterval(%d%s) = (%d, %v), want %d", v, unit, got, ok, v*ms)
			}
		}
	}
}

func TestIntervalOrDefault(t *testing.T) {
	t.Parallel()

	if got := IntervalOrDefault("1h", 1000); got != 3600000 {
		t.Errorf("IntervalOrDefault(1h) = %d", got)
	}
	if got := IntervalOrDefault("bogus", 1000); got != 1000 {
		t.Errorf("IntervalOrDefault(bogus, 1000) = %d, want 1000", got)
	}
	if got := IntervalOrDefault("bogus", 0); got != DefaultIntervalMs {
		t.Errorf("IntervalOrDefault(bogus, 0) = %d, want %d", got, DefaultIntervalMs)
	}
}

func TestFormatInterval(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		300000:   "5m",
		90000:    "90s",
		7200000:  "2h",
		86400000: "1d",
		1500:     "1500ms",
		0:        "0ms",
	}
	for ms, want := range tests {
		if got := FormatInterval(ms); got != want {
			t.Errorf("FormatInterval(%d) = %q, want %q", ms, got, want)
		}
	}
}

func TestFindSpanField(t *testing.T) {
	t.Parallel()

	source := map[string]interface{}{
		"count()":             3,
		"span( endTime , 5m )": "2023-01-01 00:00:00",
	}
	field, timeField, interval, ok := FindSpanField(source)
	if !ok {
		t.Fatal("expected span field to be found")
	}
	if field != "span( endTime , 5m )" || timeField != "endTime" || interval != "5m" {
		t.Errorf("FindSpanField = (%q, %q, %q)", field, timeField, interval)
	}

	if _, _, _, ok := FindSpanField(map[string]interface{}{"spanId": "abc"}); ok {
		t.Error("spanId must not be taken for a grouping key")
	}
	if _, _, _, ok := FindSpanField(nil); ok {
		t.Error("nil source must not match")
	}
}

func TestExtractSpanIntervalMs(t *testing.T) {
	t.Parallel()

	withKey := func(key string) *SearchResult {
		return &SearchResult{Hits: Hits{Hits: []SearchHit{{Source: map[string]interface{}{key: "2023-01-01 00:00:00", "count()": 1}}}}}
	}

	tests := []struct {
		name   string
		result *SearchResult
		want   int64
	}{
		{"five minutes", withKey("span(endTime,5m)"), 300000},
		{"two hours", withKey("span(endTime,2h)"), 7200000},
		{"one day", withKey("span(startTime,1d)"), 86400000},
		{"seconds", withKey("span(@timestamp,30s)"), 30000},
		{"bare unit", withKey("span(endTime,h)"), 3600000},
		{"invalid interval", withKey("span(endTime,invalid)"), 42},
		{"auto is not embedded", withKey("span(endTime,auto)"), 42},
		{"no span key", withKey("endTime"), 42},
		{"nil result", nil, 42},
		{"empty hits", &SearchResult{}, 42},
		{"nil source", &SearchResult{Hits: Hits{Hits: []SearchHit{{}}}}, 42},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractSpanIntervalMs(tc.result, 42); got != tc.want {
				t.Errorf("ExtractSpanIntervalMs() = %d, want %d", got, tc.want)
			}
		})
	}
}
