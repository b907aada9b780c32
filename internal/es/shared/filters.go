// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package shared

// FilterBuilder assembles the bool query of a histogram search.
//
// Fields that live in different places depending on the document format
// (OTel semconv, Data Prepper spans, ECS) are matched with "should" and
// minimum_should_match so one filter covers all of them.
type FilterBuilder struct {
	must    []map[string]interface{}
	mustNot []map[string]interface{}
}

// NewFilterBuilder creates a new FilterBuilder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		must:    []map[string]interface{}{},
		mustNot: []map[string]interface{}{},
	}
}

// AddMust adds a clause to the must array.
func (fb *FilterBuilder) AddMust(clause map[string]interface{}) *FilterBuilder {
	fb.must = append(fb.must, clause)
	return fb
}

// AddMustNot adds a clause to the must_not array.
func (fb *FilterBuilder) AddMustNot(clause map[string]interface{}) *FilterBuilder {
	fb.mustNot = append(fb.mustNot, clause)
	return fb
}

// AddClause adds a clause to must, or to must_not when negate is set.
func (fb *FilterBuilder) AddClause(clause map[string]interface{}, negate bool) *FilterBuilder {
	if negate {
		return fb.AddMustNot(clause)
	}
	return fb.AddMust(clause)
}

// ServiceFields are the places a document keeps its service name.
var ServiceFields = []string{"serviceName", "resource.attributes.service.name", "service.name"}

// AddServiceFilter restricts documents to one service.
func (fb *FilterBuilder) AddServiceFilter(service string, negate bool) *FilterBuilder {
	if service == "" {
		return fb
	}
	should := make([]map[string]interface{}, 0, len(ServiceFields))
	for _, f := range ServiceFields {
		should = append(should, map[string]interface{}{"term": map[string]interface{}{f: service}})
	}
	return fb.AddClause(map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}, negate)
}

// AddLevelFilter restricts log documents to one severity.
func (fb *FilterBuilder) AddLevelFilter(level string) *FilterBuilder {
	if level == "" {
		return fb
	}
	return fb.AddMust(map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []map[string]interface{}{
				{"term": map[string]interface{}{"severity_text": level}},
				{"term": map[string]interface{}{"log.level": level}},
				{"term": map[string]interface{}{"level": level}},
			},
			"minimum_should_match": 1,
		},
	})
}

// AddTimeRangeFilter bounds field to [gte, lte]. Either side may be empty.
// Values may be date math ("now-15m") or RFC3339 timestamps.
func (fb *FilterBuilder) AddTimeRangeFilter(field, gte, lte string) *FilterBuilder {
	if field == "" || (gte == "" && lte == "") {
		return fb
	}
	timeRange := map[string]interface{}{}
	if gte != "" {
		timeRange["gte"] = gte
	}
	if lte != "" {
		timeRange["lte"] = lte
	}
	return fb.AddMust(map[string]interface{}{
		"range": map[string]interface{}{
			field: timeRange,
		},
	})
}

// AddExistsFilter keeps documents where field is present.
func (fb *FilterBuilder) AddExistsFilter(field string) *FilterBuilder {
	if field == "" {
		return fb
	}
	return fb.AddMust(map[string]interface{}{
		"exists": map[string]interface{}{
			"field": field,
		},
	})
}

// AddQueryString adds a Lucene query_string clause. The query is passed
// through as written.
func (fb *FilterBuilder) AddQueryString(query string, fields []string) *FilterBuilder {
	if query == "" {
		return fb
	}
	qs := map[string]interface{}{
		"query":            query,
		"default_operator": "AND",
		"analyze_wildcard": true,
	}
	if len(fields) > 0 {
		qs["fields"] = fields
	}
	return fb.AddMust(map[string]interface{}{"query_string": qs})
}

// Build returns the bool query wrapped in a "query" object.
func (fb *FilterBuilder) Build() map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": fb.must,
	}
	if len(fb.mustNot) > 0 {
		boolQuery["must_not"] = fb.mustNot
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}
}

// Must returns the must clauses.
func (fb *FilterBuilder) Must() []map[string]interface{} {
	return fb.must
}

// MustNot returns the must_not clauses.
func (fb *FilterBuilder) MustNot() []map[string]interface{} {
	return fb.mustNot
}
