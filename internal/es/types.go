// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"github.com/elastic/go-elasticsearch/v8"
)

// Client wraps the Elasticsearch client with chartcat-specific functionality
type Client struct {
	es    *elasticsearch.Client
	index string
}

// Config holds the connection settings for New.
type Config struct {
	Addresses []string
	Index     string

	// APIKey takes precedence over basic auth when both are set.
	APIKey   string
	Username string
	Password string
}
