// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elastic/chartcat/internal/es/shared"
	"github.com/elastic/chartcat/internal/histogram"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// FetchOptions configures a live trace chart fetch.
type FetchOptions struct {
	QueryOptions
	// Interval is the configured interval string, e.g. "5m" or "auto".
	Interval string
	// Now anchors the default range when neither bounds nor data exist.
	Now func() time.Time
}

func (o FetchOptions) queryOptions(index string) QueryOptions {
	q := o.QueryOptions
	if q.Index == "" {
		q.Index = index
	}
	q.IntervalMs = histogram.IntervalOrDefault(o.Interval, q.IntervalMs)
	return q
}

// chartOptions charts the window the queries filter on. Without explicit
// bounds that is the lookback ending now, so quiet stretches at either end
// of it still show up as empty buckets.
func (o FetchOptions) chartOptions() tracecharts.Options {
	return tracecharts.Options{
		TimeField: o.timeField(),
		Interval:  o.Interval,
		Bounds:    o.chartBounds(),
		Now:       o.Now,
	}
}

func (o FetchOptions) chartBounds() histogram.Bounds {
	if !o.Bounds.IsZero() || o.Lookback == "" {
		return o.Bounds
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	endMs := now().UnixMilli()
	startMs := endMs - shared.LookbackMillis(o.Lookback)
	if startMs > endMs {
		startMs = math.MinInt64
	}
	return histogram.Bounds{Min: time.UnixMilli(startMs).UTC(), Max: time.UnixMilli(endMs).UTC()}
}

// Queries holds the ES|QL text of the three trace metric queries.
type Queries struct {
	Request string
	Error   string
	Latency string
}

// BuildQueries returns the queries Fetch would run.
func BuildQueries(index string, opts FetchOptions) Queries {
	q := opts.queryOptions(index)
	return Queries{
		Request: RequestQuery(q),
		Error:   ErrorQuery(q),
		Latency: LatencyQuery(q),
	}
}

// Fetch runs the request, error and latency queries concurrently and turns
// their rows into charts. A query that fails with an empty-state error (unknown index,
// a field no span has) yields a nil chart for that metric only.
func Fetch(ctx context.Context, exec Executor, opts FetchOptions, logger *zap.Logger) (tracecharts.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := exec.GetIndex()
	queries := BuildQueries(index, opts)

	run := func(ctx context.Context, name, query string) (*histogram.SearchResult, error) {
		logger.Debug("executing trace query", zap.String("metric", name), zap.String("query", query))
		res, err := exec.ExecuteESQLQuery(ctx, query)
		if err != nil {
			if shared.IsESQLEmptyStateError(err) {
				logger.Warn("trace query returned no data", zap.String("metric", name), zap.Error(err))
				return nil, nil
			}
			return nil, fmt.Errorf("failed to execute %s query: %w", name, err)
		}
		logger.Debug("trace query done", zap.String("metric", name), zap.Int("rows", len(res.Values)), zap.Int("took_ms", res.Took))
		return shared.ESQLToSearchResult(res, index), nil
	}

	var request, errs, latency *histogram.SearchResult
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { request, err = run(ctx, "request", queries.Request); return err })
	g.Go(func() (err error) { errs, err = run(ctx, "error", queries.Error); return err })
	g.Go(func() (err error) { latency, err = run(ctx, "latency", queries.Latency); return err })
	if err := g.Wait(); err != nil {
		return tracecharts.Result{}, err
	}

	return tracecharts.ProcessAggregationResults(request, errs, latency, opts.chartOptions()), nil
}

// FetchSpans searches raw span documents and charts them client side. It is
// the fallback for clusters without ES|QL.
func FetchSpans(ctx context.Context, exec Executor, opts FetchOptions, size int, uniqueTraces bool, logger *zap.Logger) (tracecharts.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := exec.GetIndex()
	q := opts.queryOptions(index)

	queryJSON, err := json.Marshal(SpanSearchBody(q))
	if err != nil {
		return tracecharts.Result{}, fmt.Errorf("failed to marshal query: %w", err)
	}
	logger.Debug("searching spans", zap.String("index", q.Index), zap.Int("size", size), zap.ByteString("query", queryJSON))

	res, err := exec.SearchForTraces(ctx, q.Index, queryJSON, size)
	if err != nil {
		return tracecharts.Result{}, fmt.Errorf("failed to search spans: %w", err)
	}
	result, err := res.Decode(queryJSON)
	if err != nil {
		return tracecharts.Result{}, err
	}
	logger.Debug("spans fetched", zap.Int("hits", len(result.Hits.Hits)), zap.Int64("total", result.Hits.Total))

	return tracecharts.ProcessSpans(result, tracecharts.SpanOptions{
		Options:      opts.chartOptions(),
		UniqueTraces: uniqueTraces,
	}), nil
}
