// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/chartcat/internal/histogram"
)

// DefaultESQLLookback is used when a lookback cannot be read.
const DefaultESQLLookback = "24 hours"

// LookbackToESQLInterval turns a date-math lookback such as "now-15m" into
// an ES|QL time span such as "15 minutes".
func LookbackToESQLInterval(lookback string) string {
	ms, ok := parseLookback(lookback)
	if !ok {
		return DefaultESQLLookback
	}
	return MillisToESQLDuration(ms)
}

// LookbackMillis returns the width of a date-math lookback in
// milliseconds, matching the window LookbackToESQLInterval filters on.
func LookbackMillis(lookback string) int64 {
	if ms, ok := parseLookback(lookback); ok {
		return ms
	}
	return defaultLookbackMs
}

const defaultLookbackMs = 24 * 60 * 60 * 1000

// parseLookback reads "now-<n><unit>". Weeks ("now-1w") are accepted on
// top of the chart interval units.
func parseLookback(lookback string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(lookback), "now-")
	if !ok {
		return 0, false
	}
	if weeks, ok := strings.CutSuffix(rest, "w"); ok {
		if weeks == "" {
			weeks = "1"
		}
		n, err := strconv.Atoi(weeks)
		if err != nil || n <= 0 {
			return 0, false
		}
		rest = strconv.Itoa(7*n) + "d"
	}
	return histogram.ParseInterval(rest)
}

// MillisToESQLDuration renders a bucket width as an ES|QL time span literal,
// using the largest unit that divides it exactly.
func MillisToESQLDuration(ms int64) string {
	units := []struct {
		ms   int64
		name string
	}{
		{24 * 60 * 60 * 1000, "day"},
		{60 * 60 * 1000, "hour"},
		{60 * 1000, "minute"},
		{1000, "second"},
		{1, "millisecond"},
	}
	for _, u := range units {
		if ms >= u.ms && ms%u.ms == 0 {
			n := ms / u.ms
			if n == 1 {
				return "1 " + u.name
			}
			return fmt.Sprintf("%d %ss", n, u.name)
		}
	}
	return "1 minute"
}

// ESQLDatetime renders t as an ES|QL datetime literal.
func ESQLDatetime(t time.Time) string {
	return fmt.Sprintf("TO_DATETIME(\"%s\")", t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

// QuoteESQLIdentifier wraps a column name in backticks so that names like
// "span(endTime,5m)" or "count()" can be used as aliases.
func QuoteESQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var esqlStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeESQLString escapes s for use inside a double quoted ES|QL literal.
func EscapeESQLString(s string) string {
	return esqlStringEscaper.Replace(s)
}
