// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind selects how values that land in the same bucket are combined.
type Kind int

const (
	// KindSum adds values together.
	KindSum Kind = iota
	// KindAverage keeps a running sum and count and emits their mean.
	KindAverage
	// KindUniqueCount collects distinct hit identifiers and emits the set size.
	KindUniqueCount
)

func (k Kind) String() string {
	switch k {
	case KindSum:
		return "sum"
	case KindAverage:
		return "average"
	case KindUniqueCount:
		return "unique_count"
	default:
		return "unknown"
	}
}

// Metric configures one accumulation pass over a result set.
type Metric struct {
	// Fields are candidate value fields, tried in order. The first one
	// holding a numeric value wins.
	Fields []string
	Kind   Kind
	// Transform is applied to the selected value.
	Transform func(float64) float64
	// Value, when set, replaces the Fields lookup. It reports false when
	// the source carries no value.
	Value func(source map[string]interface{}) (float64, bool)
	// Include gates hits before they are counted. Excluded hits still
	// create their bucket with a zero contribution.
	Include func(source map[string]interface{}) bool
	// IDFields name the identifier used by KindUniqueCount. The hit ID is
	// used when none of them is present.
	IDFields []string
	// SkipMissing leaves hits without a value out of an average instead of
	// counting them as zero.
	SkipMissing bool
}

// accumulator is the per-bucket running state for every Kind.
type accumulator struct {
	sum   float64
	count int64
	ids   map[string]struct{}
}

// Buckets maps bucket keys (epoch ms) to accumulated state for one metric.
type Buckets struct {
	kind     Kind
	interval int64
	acc      map[int64]*accumulator
	minTS    int64
	maxTS    int64
	seen     bool
}

// Kind returns the accumulation kind.
func (b *Buckets) Kind() Kind { return b.kind }

// Interval returns the bucket width in milliseconds.
func (b *Buckets) Interval() int64 { return b.interval }

// Len returns the number of non-empty buckets.
func (b *Buckets) Len() int {
	if b == nil {
		return 0
	}
	return len(b.acc)
}

// TimeRange returns the smallest and largest raw timestamps seen.
func (b *Buckets) TimeRange() (min, max int64, ok bool) {
	if b.Len() == 0 {
		return 0, 0, false
	}
	return b.minTS, b.maxTS, true
}

// Value finalizes the bucket at key. Missing buckets read as zero.
func (b *Buckets) Value(key int64) (float64, bool) {
	if b == nil {
		return 0, false
	}
	a, ok := b.acc[key]
	if !ok {
		return 0, false
	}
	switch b.kind {
	case KindAverage:
		if a.count == 0 {
			return 0, true
		}
		return a.sum / float64(a.count), true
	case KindUniqueCount:
		return float64(len(a.ids)), true
	default:
		return a.sum, true
	}
}

// Keys returns the non-empty bucket keys in ascending order.
func (b *Buckets) Keys() []int64 {
	if b.Len() == 0 {
		return nil
	}
	keys := make([]int64, 0, len(b.acc))
	for k := range b.acc {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// TimeOf returns the hit's bucketing timestamp. A span grouping key takes
// precedence over the dataset time field since it marks pre-bucketed rows.
func TimeOf(source map[string]interface{}, timeField string) (int64, bool) {
	if source == nil {
		return 0, false
	}
	if field, _, _, ok := FindSpanField(source); ok {
		return ParseTimestamp(source[field])
	}
	if timeField == "" {
		return 0, false
	}
	v, ok := Lookup(source, timeField)
	if !ok {
		return 0, false
	}
	return ParseTimestamp(v)
}

// Accumulate walks the hits of result and folds each into its time bucket.
// Hits whose timestamp is missing or malformed are skipped. A missing metric
// value counts as zero. An invalid interval yields no buckets.
func Accumulate(result *SearchResult, metric Metric, timeField string, interval int64) *Buckets {
	b := &Buckets{
		kind:     metric.Kind,
		interval: interval,
		acc:      make(map[int64]*accumulator),
	}
	if result.IsEmpty() || !ValidInterval(interval) {
		return b
	}

	for i := range result.Hits.Hits {
		hit := &result.Hits.Hits[i]
		ts, ok := TimeOf(hit.Source, timeField)
		if !ok {
			continue
		}
		key := BucketKey(ts, interval)

		a, exists := b.acc[key]
		if !exists {
			a = &accumulator{}
			if metric.Kind == KindUniqueCount {
				a.ids = make(map[string]struct{})
			}
			b.acc[key] = a
		}
		if !b.seen || ts < b.minTS {
			b.minTS = ts
		}
		if !b.seen || ts > b.maxTS {
			b.maxTS = ts
		}
		b.seen = true

		if metric.Include != nil && !metric.Include(hit.Source) {
			continue
		}

		switch metric.Kind {
		case KindUniqueCount:
			if id := hitIdentifier(hit, metric.IDFields); id != "" {
				a.ids[id] = struct{}{}
			}
		case KindAverage:
			v, ok := metricValue(hit.Source, metric)
			if !ok && metric.SkipMissing {
				continue
			}
			a.sum += v
			a.count++
		default:
			v, _ := metricValue(hit.Source, metric)
			a.sum += v
		}
	}
	return b
}

// metricValue reads and transforms the metric value of source. Missing
// values read as zero with ok=false.
func metricValue(source map[string]interface{}, metric Metric) (float64, bool) {
	var (
		v  float64
		ok bool
	)
	if metric.Value != nil {
		v, ok = metric.Value(source)
	} else {
		v, ok = FirstNumber(source, metric.Fields...)
	}
	if !ok {
		return 0, false
	}
	if metric.Transform != nil {
		v = metric.Transform(v)
	}
	return v, true
}

func hitIdentifier(hit *SearchHit, fields []string) string {
	for _, f := range fields {
		v, ok := Lookup(hit.Source, f)
		if !ok || v == nil {
			continue
		}
		if s := ToString(v); s != "" {
			return s
		}
	}
	return hit.ID
}

// FirstNumber returns the first value among fields that is present,
// non-null and numeric.
func FirstNumber(source map[string]interface{}, fields ...string) (float64, bool) {
	for _, f := range fields {
		v, ok := Lookup(source, f)
		if !ok {
			continue
		}
		if n, ok := ToFloat(v); ok {
			return n, true
		}
	}
	return 0, false
}

// Lookup returns source[field] when present as a flat key, otherwise it
// walks the dotted path through nested maps.
func Lookup(source map[string]interface{}, field string) (interface{}, bool) {
	if source == nil || field == "" {
		return nil, false
	}
	if v, ok := source[field]; ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	current := interface{}(source)
	for _, part := range strings.Split(field, ".") {
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

// ToFloat converts JSON-decoded numbers and numeric strings to float64.
// NaN and infinities are rejected.
func ToFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToString renders scalar field values for comparison. Non-scalars render empty.
func ToString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
