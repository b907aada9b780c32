// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import (
	"strings"

	"github.com/elastic/chartcat/internal/histogram"
)

// statusPath locates a status value in a span document. flat is tried as a
// single key first, then nested walks the source map part by part.
type statusPath struct {
	flat   string
	nested []string
}

// httpStatusPaths are the places span documents keep the HTTP response code,
// across OTel semantic convention versions and flattening styles.
var httpStatusPaths = []statusPath{
	{flat: "attributes.http.status_code"},
	{nested: []string{"attributes", "http.status_code"}},
	{nested: []string{"attributes", "http", "status_code"}},
	{nested: []string{"attributes", "http", "response", "status_code"}},
	{nested: []string{"attributes", "http.response.status_code"}},
	{flat: "http.status_code"},
	{nested: []string{"http", "status_code"}},
}

// traceStatusPaths hold the span status code. Code 2 is STATUS_CODE_ERROR.
var traceStatusPaths = []statusPath{
	{flat: "status.code"},
	{nested: []string{"status", "code"}},
	{flat: "statusCode"},
	{flat: "traceGroupFields.statusCode"},
	{nested: []string{"traceGroupFields", "statusCode"}},
}

// IsErrorSpan reports whether a span document represents a failed request.
// A 4xx or 5xx HTTP status wins; otherwise an error span status does.
func IsErrorSpan(source map[string]interface{}) bool {
	if source == nil {
		return false
	}
	if code, ok := firstStatus(source, httpStatusPaths); ok {
		if strings.HasPrefix(code, "4") || strings.HasPrefix(code, "5") {
			return true
		}
	}
	if code, ok := firstStatus(source, traceStatusPaths); ok {
		return code == "2"
	}
	return false
}

func firstStatus(source map[string]interface{}, paths []statusPath) (string, bool) {
	for _, p := range paths {
		v, ok := p.lookup(source)
		if !ok || v == nil {
			continue
		}
		if s := histogram.ToString(v); s != "" {
			return s, true
		}
	}
	return "", false
}

func (p statusPath) lookup(source map[string]interface{}) (interface{}, bool) {
	if p.flat != "" {
		v, ok := source[p.flat]
		return v, ok
	}
	current := interface{}(source)
	for _, part := range p.nested {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
