package pipeline

import "github.com/cespare/xxhash/v2"

// Partitioner routes keys to a fixed number of partitions. The same key
// always lands in the same partition.
type Partitioner struct {
	n uint64
}

// NewPartitioner creates a Partitioner over n partitions, at least one.
func NewPartitioner(n int) Partitioner {
	if n < 1 {
		n = 1
	}

	return Partitioner{n: uint64(n)}
}

// Partition returns the partition of key in [0, Len()).
func (p Partitioner) Partition(key string) int {
	return int(xxhash.Sum64String(key) % p.n)
}

// Len returns the number of partitions.
func (p Partitioner) Len() int {
	return int(p.n)
}
