// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package traces

import "testing"

func TestIsErrorSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source map[string]interface{}
		want   bool
	}{
		{"nil source", nil, false},
		{"empty source", map[string]interface{}{}, false},
		{"flat 404", map[string]interface{}{"attributes.http.status_code": 404.0}, true},
		{"flat 500", map[string]interface{}{"attributes.http.status_code": 500.0}, true},
		{"flat 200", map[string]interface{}{"attributes.http.status_code": 200.0}, false},
		{"flat 301", map[string]interface{}{"attributes.http.status_code": 301.0}, false},
		{"string 503", map[string]interface{}{"attributes.http.status_code": "503"}, true},
		{"dotted key inside attributes", map[string]interface{}{
			"attributes": map[string]interface{}{"http.status_code": 502.0},
		}, true},
		{"fully nested", map[string]interface{}{
			"attributes": map[string]interface{}{"http": map[string]interface{}{"status_code": 500.0}},
		}, true},
		{"nested response status", map[string]interface{}{
			"attributes": map[string]interface{}{"http": map[string]interface{}{"response": map[string]interface{}{"status_code": 429.0}}},
		}, true},
		{"dotted response status", map[string]interface{}{
			"attributes": map[string]interface{}{"http.response.status_code": 404.0},
		}, true},
		{"top-level flat", map[string]interface{}{"http.status_code": 500.0}, true},
		{"top-level nested", map[string]interface{}{"http": map[string]interface{}{"status_code": 404.0}}, true},
		{"status code 2", map[string]interface{}{"status.code": 2.0}, true},
		{"status code 1", map[string]interface{}{"status.code": 1.0}, false},
		{"status code string 2", map[string]interface{}{"status.code": "2"}, true},
		{"nested status code 2", map[string]interface{}{"status": map[string]interface{}{"code": "2"}}, true},
		{"nested status code 0", map[string]interface{}{"status": map[string]interface{}{"code": 0.0}}, false},
		{"statusCode", map[string]interface{}{"statusCode": 2.0}, true},
		{"trace group status", map[string]interface{}{"traceGroupFields.statusCode": 2.0}, true},
		{"nested trace group status", map[string]interface{}{
			"traceGroupFields": map[string]interface{}{"statusCode": 2.0},
		}, true},
		{"ok http falls through to span status", map[string]interface{}{
			"attributes.http.status_code": 200.0,
			"status.code":                 2.0,
		}, true},
		{"null status ignored", map[string]interface{}{"status.code": nil, "statusCode": 2.0}, true},
		{"non scalar status", map[string]interface{}{"status": "2"}, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsErrorSpan(tc.source); got != tc.want {
				t.Errorf("IsErrorSpan(%v) = %v, want %v", tc.source, got, tc.want)
			}
		})
	}
}
