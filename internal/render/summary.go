// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/elastic/chartcat/internal/es/logs"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// maxSummaryFields caps the field list under a log chart.
const maxSummaryFields = 5

// TraceSummary renders request and error totals on one line, e.g.
// "Requests 1,234 total (3.2 req/s)   Errors 12 total (1.0%)".
func TraceSummary(s tracecharts.Summary) string {
	requests := fmt.Sprintf("%s total (%.1f req/s)", humanize.Comma(int64(math.Round(s.TotalRequests))), s.RequestsPerSecond)
	errs := fmt.Sprintf("%s total (%.1f%%)", humanize.Comma(int64(math.Round(s.TotalErrors))), s.ErrorPercentage)
	return SummaryKeyStyle.Render("Requests") + " " + requests + "   " +
		SummaryKeyStyle.Render("Errors") + " " + errs
}

// LogSummary renders the hit total, the query time, and the most common
// fields of the sampled hits.
func LogSummary(res *logs.HistogramResult) string {
	if res == nil {
		return MutedStyle.Render("No results")
	}
	var b strings.Builder
	b.WriteString(SummaryKeyStyle.Render("Logs"))
	b.WriteString(" " + humanize.Comma(res.Total) + " total")
	if res.ElapsedMs > 0 {
		b.WriteString(MutedStyle.Render(fmt.Sprintf(" in %dms", res.ElapsedMs)))
	}

	if fields := topFields(res.FieldCounts, maxSummaryFields); len(fields) > 0 {
		b.WriteString("\n")
		b.WriteString(SummaryKeyStyle.Render("Fields"))
		for _, f := range fields {
			b.WriteString(fmt.Sprintf(" %s (%s)", f, humanize.Comma(int64(res.FieldCounts[f]))))
		}
	}
	return b.String()
}

// topFields returns up to n field names, most frequent first, ties by name.
func topFields(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
