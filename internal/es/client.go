// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/es/shared"
	"github.com/elastic/chartcat/internal/es/traces"
	"github.com/elastic/chartcat/internal/histogram"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// Operations live in the subpackages and reach the cluster through the
// Executor interfaces implemented here:
// - Trace charts: traces/operations.go (ES|QL and raw span search)
// - Log histograms: logs/operations.go (date_histogram search)
// - Shared response and error parsing: shared/

// New creates a new Elasticsearch client
func New(cfg Config) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.APIKey != "" {
		esCfg.APIKey = cfg.APIKey
	} else {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: cfg.Index,
	}, nil
}

// SetIndex changes the index pattern
func (c *Client) SetIndex(index string) {
	c.index = index
}

// GetIndex returns the current index pattern
func (c *Client) GetIndex() string {
	return c.index
}

// Ping checks if Elasticsearch is reachable
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping ES: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES ping failed: %s", res.Status())
	}

	return nil
}

// === Low-level methods for domain package interfaces ===

// SearchRaw executes a search query and returns the raw response.
// This is the common implementation used by the executor interfaces.
func (c *Client) SearchRaw(ctx context.Context, index string, body []byte, size int) (*shared.SearchResponse, error) {
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	return &shared.SearchResponse{
		Body:       res.Body,
		StatusCode: res.StatusCode,
		Status:     res.Status(),
		IsError:    res.IsError(),
	}, nil
}

// SearchForTraces implements traces.Executor interface
func (c *Client) SearchForTraces(ctx context.Context, index string, body []byte, size int) (*shared.SearchResponse, error) {
	return c.SearchRaw(ctx, index, body, size)
}

// SearchForLogs implements logs.Executor interface
func (c *Client) SearchForLogs(ctx context.Context, index string, body []byte, size int) (*shared.SearchResponse, error) {
	return c.SearchRaw(ctx, index, body, size)
}

// Search runs body against the current index and decodes the response.
func (c *Client) Search(ctx context.Context, body []byte, size int) (*histogram.SearchResult, error) {
	res, err := c.SearchRaw(ctx, c.index, body, size)
	if err != nil {
		return nil, err
	}
	return res.Decode(body)
}

// ExecuteESQLQuery executes an ES|QL query and returns the structured result.
// Verification failures caused by a missing index or field come back as the
// typed errors of the shared package.
func (c *Client) ExecuteESQLQuery(ctx context.Context, query string) (*shared.ESQLResult, error) {
	bodyJSON, err := json.Marshal(map[string]interface{}{
		"query": query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ES|QL query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "/_query", bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create ES|QL request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.es.Transport.Perform(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ES|QL query: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, shared.ParseESQLError(res.StatusCode, res.Status, bodyBytes, query)
	}

	var result shared.ESQLResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ES|QL response: %w", err)
	}

	return &result, nil
}

// === Thin wrappers for domain operations ===

// TraceCharts runs the request, error and latency ES|QL aggregations.
func (c *Client) TraceCharts(ctx context.Context, opts traces.FetchOptions, logger *zap.Logger) (tracecharts.Result, error) {
	return traces.Fetch(ctx, c, opts, logger)
}

// TraceSpanCharts fetches raw spans and charts them client side.
func (c *Client) TraceSpanCharts(ctx context.Context, opts traces.FetchOptions, size int, uniqueTraces bool, logger *zap.Logger) (tracecharts.Result, error) {
	return traces.FetchSpans(ctx, c, opts, size, uniqueTraces, logger)
}

// LogHistogram returns the log count chart for the current index.
func (c *Client) LogHistogram(ctx context.Context, opts logs.HistogramOptions, logger *zap.Logger) (*logs.HistogramResult, error) {
	return logs.Histogram(ctx, c, opts, logger)
}
