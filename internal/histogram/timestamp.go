// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted once a zone designator is guaranteed to be present.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02Z07:00",
}

// hasZone mirrors how the query layer tells zoned from naive timestamps:
// a "Z", a "+" or a "-" past the date part marks an explicit offset.
func hasZone(s string) bool {
	return strings.Contains(s, "Z") ||
		strings.Contains(s, "+") ||
		(strings.Contains(s, "-") && strings.LastIndex(s, "-") > 10)
}

// NormalizeTimestamp parses a timestamp string into epoch milliseconds.
// Naive timestamps (no zone designator) are read as UTC.
func NormalizeTimestamp(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if !hasZone(s) {
		s += "Z"
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// ParseTimestamp converts a raw field value into epoch milliseconds.
// Numbers and numeric strings above 1e12 are taken as epoch milliseconds.
func ParseTimestamp(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			if f > 1e12 {
				return floatMillis(f)
			}
			return 0, false
		}
		return NormalizeTimestamp(t)
	case float64:
		return floatMillis(t)
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return ParseTimestamp(f)
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	default:
		return 0, false
	}
}

// floatMillis converts f to int64 when it is representable. NaN, the
// infinities and values outside the int64 range are rejected.
func floatMillis(f float64) (int64, bool) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// BucketKey returns the largest multiple of interval that is <= ts. Near
// math.MinInt64, where that multiple is not representable, the lowest
// representable multiple is returned instead.
func BucketKey(ts, interval int64) int64 {
	q := ts / interval
	if ts%interval != 0 && ts < 0 && q > math.MinInt64/interval {
		q--
	}
	return q * interval
}
