// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestESQLToSearchResult(t *testing.T) {
	t.Parallel()

	res := &ESQLResult{
		Columns: []ESQLColumn{
			{Name: "count()", Type: "long"},
			{Name: "span(endTime,5m)", Type: "date"},
		},
		Values: [][]interface{}{
			{150.0, "2023-01-01T00:00:00.000Z"},
			{200.0, "2023-01-01T00:05:00.000Z"},
			{150.0, "2023-01-01T00:00:00.000Z"},
			{1.0},
		},
		Took: 12,
	}

	out := ESQLToSearchResult(res, "traces-*")
	require.Len(t, out.Hits.Hits, 4)
	assert.Equal(t, int64(4), out.Hits.Total)
	assert.Equal(t, int64(12), out.ElapsedMs)
	assert.Equal(t, "date", out.FieldSchema[1].Type)

	first := out.Hits.Hits[0]
	assert.Equal(t, "traces-*", first.Index)
	assert.Equal(t, map[string]interface{}{"count()": 150.0, "span(endTime,5m)": "2023-01-01T00:00:00.000Z"}, first.Source)
	assert.Equal(t, map[string]interface{}{"count()": 1.0}, out.Hits.Hits[3].Source, "short rows keep the columns they have")

	_, err := uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, out.Hits.Hits[2].ID, "identical rows map to the same id")
	assert.NotEqual(t, first.ID, out.Hits.Hits[1].ID)
	assert.Equal(t, first.ID, ESQLToSearchResult(res, "traces-*").Hits.Hits[0].ID)
	assert.NotEqual(t, first.ID, ESQLToSearchResult(res, "other").Hits.Hits[0].ID)
}

func TestESQLToSearchResultNil(t *testing.T) {
	t.Parallel()

	out := ESQLToSearchResult(nil, "x")
	require.NotNil(t, out)
	assert.True(t, out.IsEmpty())
}
