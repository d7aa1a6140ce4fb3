package spacesaving

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/vitalvas/topn/linkedlist"
)

// MaxCapacity is the largest supported capacity. The bucket arena holds one
// slot more than the capacity and slots are addressed by int32 handles.
const MaxCapacity = math.MaxInt32 - 1

// preallocLimit bounds the storage reserved up front, larger structures
// grow as keys arrive.
const preallocLimit = 1 << 16

// ErrInvalidCapacity is returned by NewStrict for capacities outside
// [1, MaxCapacity].
var ErrInvalidCapacity = errors.New("spacesaving: capacity out of range")

// SpaceSaving implements the Space-Saving algorithm for finding the most
// frequent keys of a stream with a fixed number of counters.
//
// Tracked keys are grouped into buckets of equal count, and the buckets form
// a chain in strictly ascending count order. Every operation is O(1):
//   - a repeated key moves to the bucket for count+1, creating it next to
//     the old bucket when missing
//   - a new key at capacity evicts the oldest key of the lowest bucket
//   - a new key always starts at count 1, it does not inherit the count of
//     the key it replaced
//
// Properties:
//   - Bounded memory: O(m) where m is the capacity, allocated as keys arrive
//   - Exact counts while the number of distinct keys stays within capacity
//   - Not safe for concurrent use: one instance belongs to one partition
type SpaceSaving[K comparable] struct {
	capacity int
	index    map[K]linkedlist.Handle
	nodes    *linkedlist.Arena[node[K]]
	buckets  *linkedlist.Arena[bucket[K]]
	chain    linkedlist.List[bucket[K]]
}

// Item is a tracked key with its count.
type Item[K comparable] struct {
	Value K
	Count uint64
}

// New creates a SpaceSaving structure that tracks at most capacity keys.
// Capacities are clamped to [1, MaxCapacity].
func New[K comparable](capacity int) *SpaceSaving[K] {
	capacity = max(1, min(capacity, MaxCapacity))
	hint := min(capacity, preallocLimit)

	buckets := linkedlist.NewArena[bucket[K]](hint + 1)

	return &SpaceSaving[K]{
		capacity: capacity,
		index:    make(map[K]linkedlist.Handle, hint),
		nodes:    linkedlist.NewArena[node[K]](hint),
		buckets:  buckets,
		chain:    linkedlist.New(buckets),
	}
}

// NewStrict is like New but rejects capacities outside [1, MaxCapacity].
func NewStrict[K comparable](capacity int) (*SpaceSaving[K], error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	return New[K](capacity), nil
}

// Add records an occurrence of key and returns its count after the addition.
func (ss *SpaceSaving[K]) Add(key K) uint64 {
	if h, ok := ss.index[key]; ok {
		return ss.promote(h)
	}

	if len(ss.index) >= ss.capacity {
		ss.evict()
	}

	ss.insert(key)

	return 1
}

// promote moves the node to the bucket for count+1.
func (ss *SpaceSaving[K]) promote(nh linkedlist.Handle) uint64 {
	n := ss.nodes.Get(nh)
	bh := n.bucket

	current := ss.buckets.Get(bh)
	count := current.count + 1
	current.remove(nh)

	if next := ss.chain.Next(bh); next != linkedlist.Nil && ss.buckets.Get(next).count == count {
		ss.buckets.Get(next).addFirst(nh)
		n.bucket = next
	} else {
		// Alloc may move the bucket slots, current is stale after this point.
		created := ss.buckets.Alloc(newBucket(count, ss.nodes))
		ss.chain.InsertAfter(bh, created)
		ss.buckets.Get(created).addFirst(nh)
		n.bucket = created
	}

	ss.dropIfEmpty(bh)

	return count
}

// evict removes the oldest key of the lowest bucket.
func (ss *SpaceSaving[K]) evict() {
	first := ss.chain.Front()
	if first == linkedlist.Nil {
		return
	}

	nh := ss.buckets.Get(first).removeLast()
	delete(ss.index, ss.nodes.Get(nh).key)
	ss.nodes.Free(nh)

	ss.dropIfEmpty(first)
}

// insert tracks a new key at count 1.
func (ss *SpaceSaving[K]) insert(key K) {
	nh := ss.nodes.Alloc(node[K]{key: key})

	first := ss.chain.Front()
	if first == linkedlist.Nil || ss.buckets.Get(first).count != 1 {
		first = ss.buckets.Alloc(newBucket(1, ss.nodes))
		ss.chain.PushFront(first)
	}

	ss.buckets.Get(first).addFirst(nh)
	ss.nodes.Get(nh).bucket = first
	ss.index[key] = nh
}

func (ss *SpaceSaving[K]) dropIfEmpty(bh linkedlist.Handle) {
	if ss.buckets.Get(bh).size() > 0 {
		return
	}

	ss.chain.Remove(bh)
	ss.buckets.Free(bh)
}

// Count returns the count of key, or 0 if the key is not tracked.
func (ss *SpaceSaving[K]) Count(key K) uint64 {
	h, ok := ss.index[key]
	if !ok {
		return 0
	}

	return ss.buckets.Get(ss.nodes.Get(h).bucket).count
}

// Min returns the lowest tracked count, or 0 when nothing is tracked.
// A key arriving at capacity evicts a key holding this count.
func (ss *SpaceSaving[K]) Min() uint64 {
	first := ss.chain.Front()
	if first == linkedlist.Nil {
		return 0
	}

	return ss.buckets.Get(first).count
}

// Size returns the number of keys currently being tracked.
func (ss *SpaceSaving[K]) Size() int {
	return len(ss.index)
}

// Capacity returns the maximum number of keys that can be tracked.
func (ss *SpaceSaving[K]) Capacity() int {
	return ss.capacity
}

// All iterates every tracked key with its count, in ascending count order.
// Keys sharing a count come most recently promoted first.
//
// The sequence is restartable and does not modify the structure. Add must
// not be called while iterating.
func (ss *SpaceSaving[K]) All() iter.Seq2[K, uint64] {
	return func(yield func(K, uint64) bool) {
		for bh := range ss.chain.All() {
			b := ss.buckets.Get(bh)
			for nh := range b.nodes.All() {
				if !yield(ss.nodes.Get(nh).key, b.count) {
					return
				}
			}
		}
	}
}

// Top returns up to n tracked items in descending count order.
// Items sharing a count keep their bucket order.
func (ss *SpaceSaving[K]) Top(n int) []Item[K] {
	if n <= 0 {
		return nil
	}

	if n > len(ss.index) {
		n = len(ss.index)
	}

	items := make([]Item[K], 0, n)

	for bh := range ss.chain.Backward() {
		b := ss.buckets.Get(bh)
		for nh := range b.nodes.All() {
			if len(items) == n {
				return items
			}
			items = append(items, Item[K]{
				Value: ss.nodes.Get(nh).key,
				Count: b.count,
			})
		}
	}

	return items
}

// String dumps the bucket chain, lowest count first.
func (ss *SpaceSaving[K]) String() string {
	var sb strings.Builder

	sb.WriteString("SpaceSaving[")

	first := true
	for bh := range ss.chain.All() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		ss.buckets.Get(bh).format(&sb, ss.nodes)
	}

	sb.WriteByte(']')

	return sb.String()
}
