package spacesaving

import (
	"fmt"
	"strings"

	"github.com/vitalvas/topn/linkedlist"
)

// node holds one tracked key. bucket is a lookup relation to the owning
// bucket in the chain, never an ownership edge.
type node[K comparable] struct {
	key    K
	bucket linkedlist.Handle
}

// bucket groups every tracked key that currently shares count.
// Nodes are pushed at the head, so the tail is the oldest arrival.
type bucket[K comparable] struct {
	count uint64
	nodes linkedlist.List[node[K]]
}

func newBucket[K comparable](count uint64, nodes *linkedlist.Arena[node[K]]) bucket[K] {
	return bucket[K]{
		count: count,
		nodes: linkedlist.New(nodes),
	}
}

func (b *bucket[K]) size() int {
	return b.nodes.Len()
}

func (b *bucket[K]) addFirst(h linkedlist.Handle) {
	b.nodes.PushFront(h)
}

func (b *bucket[K]) removeLast() linkedlist.Handle {
	return b.nodes.PopBack()
}

func (b *bucket[K]) remove(h linkedlist.Handle) {
	b.nodes.Remove(h)
}

func (b *bucket[K]) format(sb *strings.Builder, nodes *linkedlist.Arena[node[K]]) {
	fmt.Fprintf(sb, "Bucket(%d):[", b.count)

	first := true
	for h := range b.nodes.All() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		fmt.Fprintf(sb, "%v", nodes.Get(h).key)
	}

	sb.WriteByte(']')
}
