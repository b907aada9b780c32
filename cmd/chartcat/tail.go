// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elastic/chartcat/internal/config"
	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/histogram"
	"github.com/elastic/chartcat/internal/render"
	tracecharts "github.com/elastic/chartcat/internal/traces"
	"github.com/elastic/chartcat/internal/watch"
)

const defaultRefresh = 2 * time.Second

var (
	tailKindFlag   string
	refreshFlag    time.Duration
	maxHitsFlag    int
	fromStartFlag  bool
	pollFlag       bool
	tailUniqueFlag bool
)

var tailCmd = &cobra.Command{
	Use:   "tail <file>...",
	Short: "Chart span or log files as they grow",
	Long: `Follows NDJSON files of span or log documents (one document or search
hit per line; plain log lines with a timestamp also work) and redraws the
charts from the most recent documents.

Examples:
  chartcat tail spans.ndjson
  chartcat tail 'logs/*.log' --kind logs --interval 10s --refresh 1s
  chartcat tail spans.ndjson --from-start --max-hits 50000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadedConfig(cmd)
		if err != nil {
			return err
		}
		if tailKindFlag != kindTraces && tailKindFlag != kindLogs {
			return fmt.Errorf("--kind must be %s or %s, got %q", kindTraces, kindLogs, tailKindFlag)
		}
		bounds, err := parseBounds(fromFlag, toFlag, time.Now)
		if err != nil {
			return err
		}
		refresh := refreshFlag
		if refresh <= 0 {
			refresh = defaultRefresh
		}

		follower, err := watch.New(watch.Config{
			Files:     args,
			MaxHits:   maxHitsFlag,
			FromStart: fromStartFlag,
			Poll:      pollFlag,
			Logger:    loggerFrom(cmd),
		})
		if err != nil {
			return err
		}

		var dirty atomic.Bool
		follower.AddHandler(func(histogram.SearchHit) { dirty.Store(true) })

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		done := make(chan error, 1)
		go func() { done <- follower.Start(ctx) }()

		out := cmd.OutOrStdout()
		opts := renderOptions(cfg)
		draw := func() error {
			fmt.Fprint(out, clearScreen)
			return renderHits(out, follower.Snapshot(), tailKindFlag, cfg, bounds, opts)
		}
		if err := draw(); err != nil {
			follower.Stop()
			<-done
			return err
		}

		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return <-done
			case <-ticker.C:
				if !dirty.Swap(false) {
					continue
				}
				if err := draw(); err != nil {
					follower.Stop()
					<-done
					return err
				}
			}
		}
	},
}

// renderHits charts hits read from files. Spans give the three trace
// charts, log documents a count chart.
func renderHits(w io.Writer, result *histogram.SearchResult, kind string, cfg config.Config, bounds histogram.Bounds, opts render.Options) error {
	if kind == kindLogs {
		return writeLogs(w, logs.Chart(result, logs.HistogramOptions{
			TimeField: effectiveTimeField(cfg, logs.DefaultTimeField),
			Interval:  cfg.Chart.Interval,
			Bounds:    bounds,
		}), opts)
	}
	return writeTraces(w, tracecharts.ProcessSpans(result, tracecharts.SpanOptions{
		Options: tracecharts.Options{
			TimeField: cfg.Chart.TimeField,
			Interval:  cfg.Chart.Interval,
			Bounds:    bounds,
		},
		UniqueTraces: tailUniqueFlag,
	}), opts)
}

func init() {
	tailCmd.Flags().StringVarP(&tailKindFlag, "kind", "k", kindTraces, "Document kind: traces or logs")
	tailCmd.Flags().DurationVar(&refreshFlag, "refresh", defaultRefresh, "Redraw interval")
	tailCmd.Flags().IntVar(&maxHitsFlag, "max-hits", watch.DefaultMaxHits, "Most recent documents kept for charting")
	tailCmd.Flags().BoolVar(&fromStartFlag, "from-start", false, "Read existing file content before following")
	tailCmd.Flags().BoolVar(&pollFlag, "poll", false, "Poll files instead of using inotify")
	tailCmd.Flags().BoolVar(&tailUniqueFlag, "unique-traces", false, "Count distinct traces instead of spans")

	rootCmd.AddCommand(tailCmd)
}
