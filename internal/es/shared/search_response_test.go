// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchResponse(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"took": 7,
		"hits": {
			"total": {"value": 42, "relation": "eq"},
			"hits": [
				{"_id": "a", "_index": "otel-v1-apm-span-000001", "_source": {"endTime": "2023-01-01T00:00:00Z", "status": {"code": 2}}},
				{"_id": "b", "_index": "otel-v1-apm-span-000001", "_source": null}
			]
		},
		"aggregations": {"histogram": {"buckets": [{"key": 1672531200000, "doc_count": 3}]}}
	}`)

	res, err := ParseSearchResponse(body)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Hits.Total)
	assert.Equal(t, int64(7), res.ElapsedMs)
	require.Len(t, res.Hits.Hits, 2)
	assert.Equal(t, "a", res.Hits.Hits[0].ID)
	assert.Equal(t, "otel-v1-apm-span-000001", res.Hits.Hits[0].Index)
	assert.Equal(t, map[string]interface{}{"code": 2.0}, res.Hits.Hits[0].Source["status"])
	assert.Nil(t, res.Hits.Hits[1].Source)
	assert.Contains(t, res.Aggregations, "histogram")
}

func TestParseSearchResponseTotalShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int64
	}{
		{"object", `{"hits":{"total":{"value":5},"hits":[]}}`, 5},
		{"number", `{"hits":{"total":9,"hits":[]}}`, 9},
		{"absent", `{"hits":{"hits":[{"_id":"x","_source":{}}]}}`, 1},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := ParseSearchResponse([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Hits.Total)
		})
	}
}

func TestParseSearchResponseInvalid(t *testing.T) {
	t.Parallel()

	_, err := ParseSearchResponse([]byte(`{"hits":`))
	assert.Error(t, err)
}
