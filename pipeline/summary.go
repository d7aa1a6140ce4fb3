package pipeline

import (
	"errors"

	"github.com/vitalvas/topn/spacesaving"
)

// ErrFlushed is returned by a Summarizer used after Flush.
var ErrFlushed = errors.New("pipeline: summarizer already flushed")

// Record is one (key, count) output row.
type Record struct {
	Key   string `cbor:"k" json:"key"`
	Count uint64 `cbor:"c" json:"count"`
}

// Summary is the drained output of one partition.
type Summary struct {
	Partition int      `cbor:"partition"`
	Capacity  int      `cbor:"capacity"`
	Keys      uint64   `cbor:"keys"`
	Evictions uint64   `cbor:"evictions"`
	Records   []Record `cbor:"records"`
}

// Exact reports whether every record of the summary carries a true count.
func (s Summary) Exact() bool {
	return s.Evictions == 0
}

// Summarizer feeds the keys of one partition into a Space-Saving structure
// and drains it once the partition's input is exhausted.
type Summarizer struct {
	partition int
	capacity  int
	topN      *spacesaving.SpaceSaving[string]
	keys      uint64
	evictions uint64
}

// NewSummarizer creates the Summarizer of one partition.
func NewSummarizer(partition, capacity int) *Summarizer {
	topN := spacesaving.New[string](capacity)

	return &Summarizer{
		partition: partition,
		capacity:  topN.Capacity(),
		topN:      topN,
	}
}

// Operate feeds one key.
func (s *Summarizer) Operate(key string) error {
	if s.topN == nil {
		return ErrFlushed
	}

	if s.topN.Size() == s.topN.Capacity() && s.topN.Count(key) == 0 {
		s.evictions++
	}

	s.topN.Add(key)
	s.keys++

	return nil
}

// Flush drains every tracked key and releases the structure. The summarizer
// accepts no keys afterwards.
func (s *Summarizer) Flush() (Summary, error) {
	if s.topN == nil {
		return Summary{}, ErrFlushed
	}

	records := make([]Record, 0, s.topN.Size())
	for key, count := range s.topN.All() {
		records = append(records, Record{Key: key, Count: count})
	}

	s.topN = nil

	return Summary{
		Partition: s.partition,
		Capacity:  s.capacity,
		Keys:      s.keys,
		Evictions: s.evictions,
		Records:   records,
	}, nil
}
