// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour

	// DefaultIntervalMs is used when neither the results nor the caller
	// provide a usable interval.
	DefaultIntervalMs = 5 * msPerMinute

	// AutoIntervalMs is the bucket width used for the "auto" interval.
	AutoIntervalMs = msPerMinute
)

var (
	intervalPattern  = regexp.MustCompile(`^(\d+)?([smhd])$`)
	spanFieldPattern = regexp.MustCompile(`^span\(\s*([^,()]+?)\s*,\s*([^()]*?)\s*\)$`)
)

var unitMs = map[string]int64{
	"s": msPerSecond,
	"m": msPerMinute,
	"h": msPerHour,
	"d": msPerDay,
}

// ParseInterval converts an interval string such as "30s", "5m", "h" or
// "auto" into milliseconds. A bare unit means one of that unit.
func ParseInterval(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "auto" {
		return AutoIntervalMs, true
	}
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n := int64(1)
	if m[1] != "" {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		n = v
	}
	ms := n * unitMs[m[2]]
	if ms <= 0 || ms/unitMs[m[2]] != n {
		return 0, false
	}
	return ms, true
}

// IntervalOrDefault parses s, returning fallback when it does not parse.
// A non-positive fallback is replaced by DefaultIntervalMs.
func IntervalOrDefault(s string, fallback int64) int64 {
	if ms, ok := ParseInterval(s); ok {
		return ms
	}
	if !ValidInterval(fallback) {
		return DefaultIntervalMs
	}
	return fallback
}

// ValidInterval reports whether ms can be used as a bucket width.
func ValidInterval(ms int64) bool {
	return ms > 0
}

// FormatInterval renders ms using the largest unit that divides it exactly.
func FormatInterval(ms int64) string {
	unit, value := IntervalUnit(ms)
	return fmt.Sprintf("%d%s", value, unit)
}

// IntervalUnit splits ms into the largest exact unit and its multiplier.
func IntervalUnit(ms int64) (string, int64) {
	switch {
	case ms <= 0:
		return "ms", ms
	case ms%msPerDay == 0:
		return "d", ms / msPerDay
	case ms%msPerHour == 0:
		return "h", ms / msPerHour
	case ms%msPerMinute == 0:
		return "m", ms / msPerMinute
	case ms%msPerSecond == 0:
		return "s", ms / msPerSecond
	default:
		return "ms", ms
	}
}

// FindSpanField looks for a pre-aggregated grouping key such as
// "span(endTime,5m)" among the source's field names. Names are scanned in
// sorted order so the result does not depend on map iteration.
func FindSpanField(source map[string]interface{}) (field, timeField, interval string, ok bool) {
	if len(source) == 0 {
		return "", "", "", false
	}
	names := make([]string, 0, len(source))
	for name := range source {
		if strings.HasPrefix(name, "span(") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if m := spanFieldPattern.FindStringSubmatch(name); m != nil {
			return name, m[1], m[2], true
		}
	}
	return "", "", "", false
}

// ExtractSpanIntervalMs returns the interval embedded in the grouping key of
// the first hit, or fallback when there is none or it does not parse.
func ExtractSpanIntervalMs(result *SearchResult, fallback int64) int64 {
	if result.IsEmpty() {
		return fallback
	}
	source := result.Hits.Hits[0].Source
	if source == nil {
		return fallback
	}
	_, _, interval, ok := FindSpanField(source)
	if !ok {
		return fallback
	}
	// "auto" is chosen by callers, it is never a valid embedded key.
	if !intervalPattern.MatchString(interval) {
		return fallback
	}
	ms, ok := ParseInterval(interval)
	if !ok {
		return fallback
	}
	return ms
}
