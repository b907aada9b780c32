// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"context"

	"github.com/elastic/chartcat/internal/es/shared"
)

// Executor defines the Elasticsearch operations needed for log histograms
type Executor interface {
	// SearchForLogs executes a search query and returns the raw response
	SearchForLogs(ctx context.Context, index string, body []byte, size int) (*shared.SearchResponse, error)

	// GetIndex returns the current index pattern
	GetIndex() string
}
