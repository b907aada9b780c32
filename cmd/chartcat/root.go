// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/chartcat/internal/config"
	"github.com/elastic/chartcat/internal/es"
	"github.com/elastic/chartcat/internal/es/logs"
	"github.com/elastic/chartcat/internal/histogram"
	"github.com/elastic/chartcat/internal/logger"
	"github.com/elastic/chartcat/internal/render"
	tracecharts "github.com/elastic/chartcat/internal/traces"
)

// Global flags shared across commands.
// Configuration values are bound via Viper; the variables keep Cobra compatibility.
var (
	esURL           string
	esIndex         string
	profileFlag     string
	timeoutFlag     time.Duration
	pingTimeoutFlag time.Duration
	timeFieldFlag   string
	intervalFlag    string
	lookbackFlag    string
	widthFlag       int
	heightFlag      int
	logLevelFlag    string
	logFormatFlag   string

	fromFlag    string
	toFlag      string
	compactFlag bool
)

type loggerKey struct{}

var rootCmd = &cobra.Command{
	Use:   "chartcat",
	Short: "Terminal charts for traces and logs stored in Elasticsearch",
	Long: `chartcat - Request, error and latency charts for trace data and count
histograms for logs, drawn in your terminal.

Charts come from a live cluster (ES|QL or search), from a saved search
response, or from span and log files as they are written.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return err
		}
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		ctx := config.WithContext(cmd.Context(), cfg)
		cmd.SetContext(context.WithValue(ctx, loggerKey{}, log))
		return nil
	},
}

// loadDotEnv loads .env from the working directory when there is one.
// Variables already set in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := logger.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.WithLevel(level), logger.WithEncoding(cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

func init() {
	// Global flags (precedence: flags > env > profile > defaults)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&esURL, "es-url", config.DefaultESURL, "Elasticsearch URL, comma separated for several nodes (env: CHARTCAT_ES_URL)")
	pf.StringVarP(&esIndex, "index", "i", config.DefaultIndex, "Index or data stream pattern (env: CHARTCAT_ES_INDEX)")
	pf.StringVarP(&profileFlag, "profile", "p", "", "Profile from the config file to use (env: CHARTCAT_PROFILE)")
	pf.DurationVar(&timeoutFlag, "timeout", config.DefaultTimeout, "Query timeout (env: CHARTCAT_ES_TIMEOUT)")
	pf.DurationVar(&pingTimeoutFlag, "ping-timeout", config.DefaultPingTimeout, "Elasticsearch ping timeout (env: CHARTCAT_ES_PING_TIMEOUT)")
	pf.StringVar(&timeFieldFlag, "time-field", config.DefaultTimeField, "Field holding the document time (env: CHARTCAT_CHART_TIME_FIELD)")
	pf.StringVar(&intervalFlag, "interval", config.DefaultInterval, "Bucket interval such as 30s, 5m, 1h or auto (env: CHARTCAT_CHART_INTERVAL)")
	pf.StringVar(&lookbackFlag, "lookback", config.DefaultLookback, "Start of the window as date math (env: CHARTCAT_CHART_LOOKBACK)")
	pf.StringVar(&fromFlag, "from", "", "Explicit window start, overrides --lookback (e.g. 2026-01-02T15:04:05Z)")
	pf.StringVar(&toFlag, "to", "", "Explicit window end (default now when --from is set)")
	pf.BoolVar(&compactFlag, "compact", false, "Draw one sparkline per chart instead of full charts")
	pf.IntVar(&widthFlag, "width", 0, "Chart width in columns, 0 for the terminal width (env: CHARTCAT_CHART_WIDTH)")
	pf.IntVar(&heightFlag, "height", config.DefaultHeight, "Chart height in rows (env: CHARTCAT_CHART_HEIGHT)")
	pf.StringVar(&logLevelFlag, "log-level", config.DefaultLogLevel, "Diagnostic log level (env: CHARTCAT_LOG_LEVEL)")
	pf.StringVar(&logFormatFlag, "log-format", config.DefaultLogFormat, "Diagnostic log format: console or json (env: CHARTCAT_LOG_FORMAT)")
}

// loadedConfig returns the configuration stored by PersistentPreRunE.
func loadedConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

func loggerFrom(cmd *cobra.Command) *zap.Logger {
	if l, ok := cmd.Context().Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// newClient creates a client for indexPattern and checks the cluster is reachable.
func newClient(ctx context.Context, cfg config.Config, indexPattern string) (*es.Client, error) {
	client, err := es.New(es.Config{
		Addresses: cfg.ES.Addresses(),
		Index:     indexPattern,
		APIKey:    cfg.ES.APIKey,
		Username:  cfg.ES.Username,
		Password:  cfg.ES.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ES.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("cannot reach Elasticsearch at %s: %w", cfg.ES.URL, err)
	}
	return client, nil
}

// effectiveIndex returns the configured index, or defaultIndex when the
// index was left at the trace default and the command charts another signal.
func effectiveIndex(cfg config.Config, defaultIndex string) string {
	if cfg.ES.Index == config.DefaultIndex {
		return defaultIndex
	}
	return cfg.ES.Index
}

// effectiveTimeField works like effectiveIndex for the time field.
func effectiveTimeField(cfg config.Config, defaultField string) string {
	if cfg.Chart.TimeField == config.DefaultTimeField {
		return defaultField
	}
	return cfg.Chart.TimeField
}

// parseBounds turns --from/--to into chart bounds. A missing end means now.
func parseBounds(from, to string, now func() time.Time) (histogram.Bounds, error) {
	var b histogram.Bounds
	if from == "" && to == "" {
		return b, nil
	}
	if from == "" {
		return b, fmt.Errorf("--to requires --from")
	}
	start, ok := histogram.NormalizeTimestamp(from)
	if !ok {
		return b, fmt.Errorf("invalid --from %q", from)
	}
	b.Min = time.UnixMilli(start).UTC()
	if to == "" {
		b.Max = now().UTC()
	} else {
		end, ok := histogram.NormalizeTimestamp(to)
		if !ok {
			return b, fmt.Errorf("invalid --to %q", to)
		}
		b.Max = time.UnixMilli(end).UTC()
	}
	if b.Max.Before(b.Min) {
		return b, fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return b, nil
}

func writeTraces(w io.Writer, res tracecharts.Result, opts render.Options) error {
	if compactFlag {
		return render.TracesCompact(w, res, opts)
	}
	return render.Traces(w, res, opts)
}

func writeLogs(w io.Writer, res *logs.HistogramResult, opts render.Options) error {
	if compactFlag {
		return render.LogsCompact(w, res, opts)
	}
	return render.Logs(w, res, opts)
}

func renderOptions(cfg config.Config) render.Options {
	width := cfg.Chart.Width
	if width == 0 {
		width = render.TerminalWidth()
	}
	return render.Options{Width: width, Height: cfg.Chart.Height}
}
