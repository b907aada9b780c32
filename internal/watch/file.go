// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"

	"github.com/elastic/chartcat/internal/es/shared"
	"github.com/elastic/chartcat/internal/histogram"
)

// LoadResponseFile reads a saved response from disk. Accepted shapes are a
// _search response, the same wrapped as {"rawResponse": ...} by Kibana's
// inspector, and an ES|QL response with columns and values.
func LoadResponseFile(path string) (*histogram.SearchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read response file: %w", err)
	}
	return ParseResponse(data, filepath.Base(path))
}

// ParseResponse decodes a saved response body. index names ES|QL rows.
func ParseResponse(data []byte, index string) (*histogram.SearchResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	if raw := gjson.GetBytes(data, "rawResponse"); raw.IsObject() {
		data = []byte(raw.Raw)
	}

	if gjson.GetBytes(data, "columns").IsArray() && gjson.GetBytes(data, "values").IsArray() {
		var res shared.ESQLResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("failed to decode ES|QL response: %w", err)
		}
		return shared.ESQLToSearchResult(&res, index), nil
	}
	if !gjson.GetBytes(data, "hits").Exists() && !gjson.GetBytes(data, "aggregations").Exists() {
		return nil, fmt.Errorf("response has neither hits, aggregations nor ES|QL columns")
	}
	return shared.ParseSearchResponse(data)
}

// WatchFile calls fn each time path is written or re-created, until ctx is
// done. The parent directory is watched so editors that replace the file
// on save are seen too.
func WatchFile(ctx context.Context, path string, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fn()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
