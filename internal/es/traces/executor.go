// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"context"

	"github.com/elastic/chartcat/internal/es/shared"
)

// Executor defines the Elasticsearch operations needed for trace charts
type Executor interface {
	shared.ESQLExecutor

	// SearchForTraces executes a search query and returns the raw response
	SearchForTraces(ctx context.Context, index string, body []byte, size int) (*shared.SearchResponse, error)

	// GetIndex returns the current index pattern
	GetIndex() string
}
