// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package render

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	primaryColor = lipgloss.Color("#7D56F4")
	errorColor   = lipgloss.Color("#FF5F56")
	infoColor    = lipgloss.Color("#61AFEF")
	successColor = lipgloss.Color("#04B575")
	mutedColor   = lipgloss.Color("#6C757D")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// BarStyle draws request and log count bars.
	BarStyle = lipgloss.NewStyle().
			Foreground(infoColor)

	ErrorBarStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	LatencyBarStyle = lipgloss.NewStyle().
			Foreground(successColor)

	SummaryKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)
)

var sparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
