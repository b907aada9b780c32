// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elastic/chartcat/internal/config"
	"github.com/elastic/chartcat/internal/es"
	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/index"
)

var (
	queryFlag      string
	levelFlag      string
	sampleSizeFlag int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Chart log volume over time",
	Long: `Charts the number of log documents per time bucket using a
date_histogram aggregation, with empty buckets filled in.

Examples:
  chartcat logs
  chartcat logs --level error --lookback now-1h --interval 1m
  chartcat logs --query 'message:timeout AND service.name:api'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadedConfig(cmd)
		if err != nil {
			return err
		}
		opts, err := logHistogramOptions(cfg)
		if err != nil {
			return err
		}
		indexPattern := effectiveIndex(cfg, index.Logs)

		if showQueryFlag {
			body, err := json.Marshal(logs.BuildHistogramQuery(opts))
			if err != nil {
				return fmt.Errorf("failed to marshal query: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "GET %s/_search\n%s\n", indexPattern, es.PrettyJSON(body))
			return err
		}

		client, err := newClient(cmd.Context(), cfg, indexPattern)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ES.Timeout)
		defer cancel()

		res, err := client.LogHistogram(ctx, opts, loggerFrom(cmd))
		if err != nil {
			return err
		}
		return writeLogs(cmd.OutOrStdout(), res, renderOptions(cfg))
	},
}

func logHistogramOptions(cfg config.Config) (logs.HistogramOptions, error) {
	bounds, err := parseBounds(fromFlag, toFlag, time.Now)
	if err != nil {
		return logs.HistogramOptions{}, err
	}
	return logs.HistogramOptions{
		TimeField:  effectiveTimeField(cfg, logs.DefaultTimeField),
		Interval:   cfg.Chart.Interval,
		Bounds:     bounds,
		Lookback:   cfg.Chart.Lookback,
		Query:      queryFlag,
		Service:    serviceFlag,
		Level:      levelFlag,
		SampleSize: sampleSizeFlag,
	}, nil
}

func init() {
	logsCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Lucene query string")
	logsCmd.Flags().StringVarP(&serviceFlag, "service", "s", "", "Only count logs of this service")
	logsCmd.Flags().StringVarP(&levelFlag, "level", "l", "", "Only count logs of this level")
	logsCmd.Flags().IntVar(&sampleSizeFlag, "sample-size", logs.DefaultSampleSize, "Hits fetched for field statistics, negative for none")
	logsCmd.Flags().BoolVar(&showQueryFlag, "show-query", false, "Print the query instead of running it")

	rootCmd.AddCommand(logsCmd)
}
