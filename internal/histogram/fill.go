// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package histogram

import (
	"slices"
	"sort"
)

// MaxPoints bounds the length of a filled series. Ranges that would need
// more points are re-bucketed to a wider interval.
const MaxPoints = 100000

// Sample is one sparse [timestamp, value] pair of a named series.
type Sample struct {
	Timestamp int64
	Value     float64
}

// FillResult is a contiguous series together with the interval that was
// finally used to produce it.
type FillResult struct {
	Points   []Point
	Interval int64
}

// Fill emits one point per bucket position from floor(start) to floor(end)
// inclusive. Positions without data are zero. An empty series is returned
// for a reversed range or an unusable interval. b is not modified.
func Fill(b *Buckets, start, end int64) FillResult {
	if b == nil || !ValidInterval(b.interval) || start > end {
		return FillResult{Points: []Point{}, Interval: intervalOf(b)}
	}
	interval := b.interval
	if wide := fitInterval(start, end, interval); wide != interval {
		b = b.rebucket(wide)
		interval = wide
	}

	first, n := bucketSpan(start, end, interval)
	points := make([]Point, 0, n)
	key := first
	for i := 0; i < n; i++ {
		v, _ := b.Value(key)
		points = append(points, Point{X: key, Y: v})
		key += interval
	}
	return FillResult{Points: points, Interval: interval}
}

// bucketSteps returns the number of interval steps between the bucket
// keys of start and end. The difference is taken in uint64 so it cannot
// overflow for any start <= end.
func bucketSteps(start, end, interval int64) uint64 {
	first, last := BucketKey(start, interval), BucketKey(end, interval)
	if last <= first {
		return 0
	}
	return (uint64(last) - uint64(first)) / uint64(interval)
}

// bucketSpan returns the first bucket key and the number of bucket
// positions over [start, end]. interval must already satisfy fitInterval,
// so the count is at most MaxPoints.
func bucketSpan(start, end, interval int64) (first int64, n int) {
	return BucketKey(start, interval), int(bucketSteps(start, end, interval)) + 1
}

// fitInterval returns the smallest multiple of interval whose bucket
// positions over [start, end] number at most MaxPoints.
func fitInterval(start, end, interval int64) int64 {
	steps := bucketSteps(start, end, interval)
	if steps < MaxPoints {
		return interval
	}
	factor := int64(steps/MaxPoints) + 1
	for bucketSteps(start, end, interval*factor) >= MaxPoints {
		factor++
	}
	return interval * factor
}

func intervalOf(b *Buckets) int64 {
	if b == nil {
		return 0
	}
	return b.interval
}

// rebucket merges the accumulators of b into buckets of a wider interval.
func (b *Buckets) rebucket(interval int64) *Buckets {
	out := &Buckets{
		kind:     b.kind,
		interval: interval,
		acc:      make(map[int64]*accumulator, len(b.acc)),
		minTS:    b.minTS,
		maxTS:    b.maxTS,
		seen:     b.seen,
	}
	for key, a := range b.acc {
		k := BucketKey(key, interval)
		dst, ok := out.acc[k]
		if !ok {
			dst = &accumulator{}
			if b.kind == KindUniqueCount {
				dst.ids = make(map[string]struct{}, len(a.ids))
			}
			out.acc[k] = dst
		}
		dst.sum += a.sum
		dst.count += a.count
		for id := range a.ids {
			dst.ids[id] = struct{}{}
		}
	}
	return out
}

// FillMissingTimestamps aligns every named series onto the same contiguous
// set of bucket timestamps spanning start..end inclusive. Existing values
// are kept as they are, absent positions become zero, and samples outside
// the range are dropped. Samples sharing a bucket are summed.
//
// When the interval or either bound does not parse the series are returned
// as sorted copies. The input map and its slices are never modified.
func FillMissingTimestamps(series map[string][]Sample, interval, start, end string) map[string][]Sample {
	out := make(map[string][]Sample, len(series))

	intervalMs, ok := ParseInterval(interval)
	startMs, okStart := ParseTimestamp(start)
	endMs, okEnd := ParseTimestamp(end)
	if !ok || !okStart || !okEnd {
		for name, samples := range series {
			cp := slices.Clone(samples)
			sort.SliceStable(cp, func(i, j int) bool { return cp[i].Timestamp < cp[j].Timestamp })
			out[name] = cp
		}
		return out
	}
	if startMs > endMs {
		for name := range series {
			out[name] = []Sample{}
		}
		return out
	}

	intervalMs = fitInterval(startMs, endMs, intervalMs)
	first, n := bucketSpan(startMs, endMs, intervalMs)

	for name, samples := range series {
		byKey := make(map[int64]float64, len(samples))
		for _, s := range samples {
			byKey[BucketKey(s.Timestamp, intervalMs)] += s.Value
		}
		filled := make([]Sample, 0, n)
		key := first
		for i := 0; i < n; i++ {
			filled = append(filled, Sample{Timestamp: key, Value: byKey[key]})
			key += intervalMs
		}
		out[name] = filled
	}
	return out
}
