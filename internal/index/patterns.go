// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package index provides constants for Elasticsearch index patterns
package index

// Index patterns of the charted data streams
const (
	Logs   = "logs-*"
	Traces = "traces-*"
)
