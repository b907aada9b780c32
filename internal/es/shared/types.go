// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package shared holds the response types and ES|QL helpers used by both
// the traces and logs query packages.
package shared

import (
	"context"
	"fmt"
	"io"

	"github.com/elastic/chartcat/internal/es/errfmt"
	"github.com/elastic/chartcat/internal/histogram"
)

// SearchResponse is an undecoded _search response.
type SearchResponse struct {
	Body       io.ReadCloser
	StatusCode int
	Status     string
	IsError    bool
}

// Decode reads and closes the body and parses it into a SearchResult.
// Error statuses are reported through errfmt together with the query
// that produced them.
func (r *SearchResponse) Decode(query []byte) (*histogram.SearchResult, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if r.IsError {
		return nil, errfmt.FormatQueryError(r.Status, body, query)
	}
	return ParseSearchResponse(body)
}

// ESQLResult is the columnar body of a /_query response.
type ESQLResult struct {
	Columns   []ESQLColumn    `json:"columns"`
	Values    [][]interface{} `json:"values"`
	Took      int             `json:"took"`
	IsPartial bool            `json:"is_partial"`
}

type ESQLColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ESQLExecutor runs a single ES|QL query.
type ESQLExecutor interface {
	ExecuteESQLQuery(ctx context.Context, query string) (*ESQLResult, error)
}
