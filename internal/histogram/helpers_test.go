// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import "time"

var base = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func at(d time.Duration) int64 {
	return base.Add(d).UnixMilli()
}

func hits(sources ...map[string]interface{}) *SearchResult {
	r := &SearchResult{}
	for _, s := range sources {
		r.Hits.Hits = append(r.Hits.Hits, SearchHit{Source: s})
	}
	r.Hits.Total = int64(len(sources))
	return r
}
