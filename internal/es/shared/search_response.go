// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/elastic/chartcat/internal/histogram"
)

// ParseSearchResponse decodes a _search response body into a SearchResult.
// hits.total may be an object ({"value": n}) or, on older clusters and in
// saved responses, a plain number.
func ParseSearchResponse(body []byte) (*histogram.SearchResult, error) {
	var response struct {
		Took int64 `json:"took"`
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Index  string                 `json:"_index"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations map[string]interface{} `json:"aggregations"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &histogram.SearchResult{
		ElapsedMs:    response.Took,
		Aggregations: response.Aggregations,
	}
	result.Hits.Hits = make([]histogram.SearchHit, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		result.Hits.Hits = append(result.Hits.Hits, histogram.SearchHit{
			ID:     hit.ID,
			Index:  hit.Index,
			Source: hit.Source,
		})
	}

	total := gjson.GetBytes(body, "hits.total")
	switch {
	case total.IsObject():
		result.Hits.Total = total.Get("value").Int()
	case total.Type == gjson.Number:
		result.Hits.Total = total.Int()
	default:
		result.Hits.Total = int64(len(result.Hits.Hits))
	}
	return result, nil
}
