// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// FormatValue formats a float64 for compact axis labels.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}

	absV := math.Abs(v)
	switch {
	case absV == 0:
		return "0"
	case absV >= 1_000_000_000:
		return fmt.Sprintf("%.1fG", v/1_000_000_000)
	case absV >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case absV >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case absV >= 1:
		return fmt.Sprintf("%.1f", v)
	case absV >= 0.01:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// PadLeft right-aligns s in width cells. Styled text is measured by its
// visible width.
func PadLeft(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return strings.Repeat(" ", width-w) + s
}

// PadRight left-aligns s in width cells, truncating with an ellipsis.
func PadRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}

// tickFormat picks a time layout that distinguishes neighbouring buckets.
func tickFormat(interval time.Duration) string {
	switch {
	case interval > 0 && interval < time.Minute:
		return "15:04:05"
	case interval >= 24*time.Hour:
		return "2006-01-02"
	default:
		return "01-02 15:04"
	}
}

// TerminalWidth returns the width of stdout, $COLUMNS, or 80.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if env := os.Getenv("COLUMNS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val > 0 {
			return val
		}
	}
	return 80
}
