// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package logger builds the ECS formatted zap logger used for diagnostics.
// Diagnostics go to stderr so chart output on stdout stays clean.
package logger

import (
	"fmt"
	"strings"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option adjusts the zap configuration before the logger is built.
type Option func(*zap.Config)

// WithLevel sets the minimum enabled level.
func WithLevel(level zapcore.Level) Option {
	return func(c *zap.Config) {
		c.Level = zap.NewAtomicLevelAt(level)
	}
}

// WithEncoding selects "json" or "console" output.
func WithEncoding(encoding string) Option {
	return func(c *zap.Config) {
		c.Encoding = encoding
	}
}

// WithOutputPaths replaces the default stderr sink.
func WithOutputPaths(paths ...string) Option {
	return func(c *zap.Config) {
		c.OutputPaths = paths
	}
}

// WithEncoderConfig replaces the encoder configuration.
func WithEncoderConfig(ec zapcore.EncoderConfig) Option {
	return func(c *zap.Config) {
		c.EncoderConfig = ec
	}
}

// New returns a logger.
func New(opts ...Option) (*zap.Logger, error) {
	conf := zap.NewProductionConfig()
	conf.OutputPaths = []string{"stderr"}
	conf.EncoderConfig = ecszap.NewDefaultEncoderConfig().ToZapCoreEncoderConfig()

	for _, opt := range opts {
		opt(&conf)
	}

	return conf.Build(ecszap.WrapCoreOption(), zap.AddCaller())
}

// ParseLogLevel parses s as a log level. "off" disables logging entirely.
func ParseLogLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "critical":
		return zapcore.FatalLevel, nil
	case "off":
		return zapcore.FatalLevel + 1, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("invalid log level string %s", s)
}
