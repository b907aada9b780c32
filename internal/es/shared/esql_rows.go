// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/elastic/chartcat/internal/histogram"
)

// rowNamespace scopes the IDs generated for ES|QL rows.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("chartcat/esql-row"))

// ESQLToSearchResult converts columnar ES|QL output into hits whose sources
// map column names to row values. Rows have no document ID, so each hit gets
// a name-based UUID derived from the index and the row contents: the same
// row always maps to the same ID.
func ESQLToSearchResult(res *ESQLResult, index string) *histogram.SearchResult {
	out := &histogram.SearchResult{}
	if res == nil {
		return out
	}
	out.ElapsedMs = int64(res.Took)
	out.FieldSchema = make([]histogram.FieldSchema, len(res.Columns))
	for i, col := range res.Columns {
		out.FieldSchema[i] = histogram.FieldSchema{Name: col.Name, Type: col.Type}
	}

	out.Hits.Hits = make([]histogram.SearchHit, 0, len(res.Values))
	for _, row := range res.Values {
		source := make(map[string]interface{}, len(res.Columns))
		for i, col := range res.Columns {
			if i < len(row) {
				source[col.Name] = row[i]
			}
		}
		out.Hits.Hits = append(out.Hits.Hits, histogram.SearchHit{
			ID:     rowID(index, row),
			Index:  index,
			Source: source,
		})
	}
	out.Hits.Total = int64(len(out.Hits.Hits))
	return out
}

func rowID(index string, row []interface{}) string {
	data, err := json.Marshal(row)
	if err != nil {
		data = []byte(fmt.Sprint(row))
	}
	return uuid.NewSHA1(rowNamespace, append([]byte(index+"\x00"), data...)).String()
}
