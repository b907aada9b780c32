// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/chartcat/internal/config"
	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/histogram"
	"github.com/elastic/chartcat/internal/render"
	tracecharts "github.com/elastic/chartcat/internal/traces"
	"github.com/elastic/chartcat/internal/watch"
)

// Chart kinds accepted by --kind.
const (
	kindAuto   = "auto"
	kindTraces = "traces"
	kindLogs   = "logs"
)

var (
	kindFlag  string
	watchFlag bool
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

var fileCmd = &cobra.Command{
	Use:   "file <response.json>",
	Short: "Chart a saved search response",
	Long: `Charts a search response saved to disk: a raw search response, an
ES|QL response, or either wrapped in {"rawResponse": ...}.

Trace responses may hold pre-aggregated rows (a span(<field>,<interval>)
column plus request_count, error_count or avg_latency_ms) or raw spans.
Log responses are charted from their date_histogram buckets or hits.

Examples:
  chartcat file response.json
  chartcat file spans.json --kind traces --interval 1m
  chartcat file logs.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadedConfig(cmd)
		if err != nil {
			return err
		}
		switch kindFlag {
		case kindAuto, kindTraces, kindLogs:
		default:
			return fmt.Errorf("--kind must be %s, %s or %s, got %q", kindAuto, kindTraces, kindLogs, kindFlag)
		}
		bounds, err := parseBounds(fromFlag, toFlag, time.Now)
		if err != nil {
			return err
		}

		path := args[0]
		out := cmd.OutOrStdout()
		opts := renderOptions(cfg)
		if !watchFlag {
			return renderFile(out, path, kindFlag, cfg, bounds, opts)
		}

		log := loggerFrom(cmd)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		redraw := func() {
			fmt.Fprint(out, clearScreen)
			if err := renderFile(out, path, kindFlag, cfg, bounds, opts); err != nil {
				// The file may be mid-write; the next event redraws.
				log.Warn("render failed", zap.String("file", path), zap.Error(err))
				fmt.Fprintln(out, render.MutedStyle.Render(err.Error()))
			}
		}
		redraw()
		return watch.WatchFile(ctx, path, redraw)
	},
}

// renderFile loads the response at path and writes its charts to w.
func renderFile(w io.Writer, path, kind string, cfg config.Config, bounds histogram.Bounds, opts render.Options) error {
	result, err := watch.LoadResponseFile(path)
	if err != nil {
		return err
	}
	if kind == kindAuto {
		kind = detectKind(result)
	}
	if kind == kindLogs {
		return writeLogs(w, logs.Chart(result, logs.HistogramOptions{
			TimeField: effectiveTimeField(cfg, logs.DefaultTimeField),
			Interval:  cfg.Chart.Interval,
			Bounds:    bounds,
		}), opts)
	}
	return writeTraces(w, chartTraces(result, cfg, bounds), opts)
}

// detectKind treats responses with a date_histogram as logs and everything
// else as traces.
func detectKind(result *histogram.SearchResult) string {
	if _, ok := result.Aggregations[histogram.DefaultHistogramAgg]; ok {
		return kindLogs
	}
	return kindTraces
}

// chartTraces charts pre-aggregated rows per metric column present, and
// raw span documents otherwise.
func chartTraces(result *histogram.SearchResult, cfg config.Config, bounds histogram.Bounds) tracecharts.Result {
	opts := tracecharts.Options{
		TimeField: cfg.Chart.TimeField,
		Interval:  cfg.Chart.Interval,
		Bounds:    bounds,
	}
	first := firstSource(result)
	if _, _, _, ok := histogram.FindSpanField(first); !ok {
		return tracecharts.ProcessSpans(result, tracecharts.SpanOptions{Options: opts})
	}

	pick := func(fields ...string) *histogram.SearchResult {
		if _, ok := histogram.FirstNumber(first, fields...); ok {
			return result
		}
		return nil
	}
	return tracecharts.ProcessAggregationResults(
		pick("request_count", "count()"),
		pick("error_count"),
		pick("avg_latency_ms", "avg_duration_nanos"),
		opts,
	)
}

func firstSource(result *histogram.SearchResult) map[string]interface{} {
	for _, hit := range result.Hits.Hits {
		if hit.Source != nil {
			return hit.Source
		}
	}
	return nil
}

func init() {
	fileCmd.Flags().StringVarP(&kindFlag, "kind", "k", kindAuto, "Chart kind: auto, traces or logs")
	fileCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Redraw whenever the file changes")

	rootCmd.AddCommand(fileCmd)
}
