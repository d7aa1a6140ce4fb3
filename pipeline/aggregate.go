package pipeline

import (
	"cmp"
	"slices"
)

// Aggregator merges partition summaries by summing counts per key. The merged
// counts are exact only when every summary is exact.
type Aggregator struct {
	counts    map[string]uint64
	summaries int
	keys      uint64
	evictions uint64
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		counts: make(map[string]uint64),
	}
}

// Add merges the records of s into the running totals.
func (a *Aggregator) Add(s Summary) {
	for _, r := range s.Records {
		a.counts[r.Key] += r.Count
	}

	a.summaries++
	a.keys += s.Keys
	a.evictions += s.Evictions
}

// Len returns the number of distinct merged keys.
func (a *Aggregator) Len() int {
	return len(a.counts)
}

// Summaries returns the number of merged summaries.
func (a *Aggregator) Summaries() int {
	return a.summaries
}

// Keys returns the number of keys fed across all merged partitions.
func (a *Aggregator) Keys() uint64 {
	return a.keys
}

// Exact reports whether no merged partition evicted a key.
func (a *Aggregator) Exact() bool {
	return a.evictions == 0
}

// Result returns the k records with the highest counts, ties broken by key.
// k <= 0 returns every record.
func (a *Aggregator) Result(k int) []Record {
	records := make([]Record, 0, len(a.counts))
	for key, count := range a.counts {
		records = append(records, Record{Key: key, Count: count})
	}

	slices.SortFunc(records, func(x, y Record) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Key, y.Key)
	})

	if k > 0 && k < len(records) {
		records = records[:k]
	}

	return records
}
