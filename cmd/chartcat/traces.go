// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/elastic/chartcat/internal/config"
	"github.com/elastic/chartcat/internal/es"
	estraces "github.com/elastic/chartcat/internal/es/traces"
	"github.com/elastic/chartcat/internal/index"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

var (
	serviceFlag        string
	tracesRawFlag      bool
	uniqueTracesFlag   bool
	spanSizeFlag       int
	durationFieldFlag  string
	errorConditionFlag string
	showQueryFlag      bool
)

// defaultSpanSize is how many raw spans --raw fetches.
const defaultSpanSize = 5000

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Chart request, error and latency of traces",
	Long: `Charts request count, error count and average latency per time bucket.

By default the three metrics are aggregated by the cluster with ES|QL.
With --raw the span documents are fetched and bucketed locally, which
works on clusters without ES|QL.

Examples:
  chartcat traces
  chartcat traces --service checkout --interval 1m --lookback now-1h
  chartcat traces --raw --unique-traces
  chartcat traces --show-query`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadedConfig(cmd)
		if err != nil {
			return err
		}
		opts, err := traceFetchOptions(cfg)
		if err != nil {
			return err
		}
		indexPattern := effectiveIndex(cfg, index.Traces)

		if showQueryFlag {
			return printTraceQueries(cmd.OutOrStdout(), indexPattern, opts, tracesRawFlag)
		}

		client, err := newClient(cmd.Context(), cfg, indexPattern)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ES.Timeout)
		defer cancel()

		log := loggerFrom(cmd)
		var res tracecharts.Result
		if tracesRawFlag {
			res, err = client.TraceSpanCharts(ctx, opts, spanSizeFlag, uniqueTracesFlag, log)
		} else {
			res, err = client.TraceCharts(ctx, opts, log)
		}
		if err != nil {
			return err
		}
		return writeTraces(cmd.OutOrStdout(), res, renderOptions(cfg))
	},
}

func traceFetchOptions(cfg config.Config) (estraces.FetchOptions, error) {
	bounds, err := parseBounds(fromFlag, toFlag, time.Now)
	if err != nil {
		return estraces.FetchOptions{}, err
	}
	return estraces.FetchOptions{
		QueryOptions: estraces.QueryOptions{
			TimeField:      cfg.Chart.TimeField,
			Bounds:         bounds,
			Lookback:       cfg.Chart.Lookback,
			Service:        serviceFlag,
			DurationField:  durationFieldFlag,
			ErrorCondition: errorConditionFlag,
		},
		Interval: cfg.Chart.Interval,
	}, nil
}

func printTraceQueries(w io.Writer, indexPattern string, opts estraces.FetchOptions, raw bool) error {
	if raw {
		q := opts.QueryOptions
		q.Index = indexPattern
		body, err := json.Marshal(estraces.SpanSearchBody(q))
		if err != nil {
			return fmt.Errorf("failed to marshal query: %w", err)
		}
		_, err = fmt.Fprintf(w, "GET %s/_search\n%s\n", indexPattern, es.PrettyJSON(body))
		return err
	}
	queries := estraces.BuildQueries(indexPattern, opts)
	_, err := fmt.Fprintf(w, "# request\n%s\n\n# errors\n%s\n\n# latency\n%s\n",
		queries.Request, queries.Error, queries.Latency)
	return err
}

func init() {
	tracesCmd.Flags().StringVarP(&serviceFlag, "service", "s", "", "Only chart spans of this service")
	tracesCmd.Flags().BoolVar(&tracesRawFlag, "raw", false, "Fetch raw spans and bucket them locally")
	tracesCmd.Flags().BoolVar(&uniqueTracesFlag, "unique-traces", false, "Count distinct traces instead of spans (with --raw)")
	tracesCmd.Flags().IntVar(&spanSizeFlag, "size", defaultSpanSize, "Number of spans to fetch (with --raw)")
	tracesCmd.Flags().StringVar(&durationFieldFlag, "duration-field", estraces.DefaultDurationField, "Span duration field in nanoseconds")
	tracesCmd.Flags().StringVar(&errorConditionFlag, "error-condition", estraces.DefaultErrorCondition, "ES|QL condition selecting error spans")
	tracesCmd.Flags().BoolVar(&showQueryFlag, "show-query", false, "Print the queries instead of running them")

	rootCmd.AddCommand(tracesCmd)
}
