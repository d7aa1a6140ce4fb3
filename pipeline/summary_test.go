package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func operateAll(t *testing.T, s *Summarizer, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, s.Operate(key))
	}
}

func TestSummarizer(t *testing.T) {
	t.Run("exact within capacity", func(t *testing.T) {
		s := NewSummarizer(2, 3)
		operateAll(t, s, "X", "Y", "Y", "Z", "X")

		summary, err := s.Flush()
		require.NoError(t, err)

		assert.Equal(t, 2, summary.Partition)
		assert.Equal(t, 3, summary.Capacity)
		assert.Equal(t, uint64(5), summary.Keys)
		assert.True(t, summary.Exact())
		assert.ElementsMatch(t, []Record{
			{Key: "X", Count: 2},
			{Key: "Y", Count: 2},
			{Key: "Z", Count: 1},
		}, summary.Records)
	})

	t.Run("records ascend by count", func(t *testing.T) {
		s := NewSummarizer(0, 10)
		operateAll(t, s, "a", "a", "a", "b", "b", "c")

		summary, err := s.Flush()
		require.NoError(t, err)
		assert.Equal(t, []Record{
			{Key: "c", Count: 1},
			{Key: "b", Count: 2},
			{Key: "a", Count: 3},
		}, summary.Records)
	})

	t.Run("counts evictions", func(t *testing.T) {
		s := NewSummarizer(0, 7)
		for _, c := range "AWBCHZMSLSURTSJVBNAHBSLJVSDPQABAS" {
			require.NoError(t, s.Operate(string(c)))
		}

		summary, err := s.Flush()
		require.NoError(t, err)
		assert.False(t, summary.Exact())
		assert.Positive(t, summary.Evictions)
		assert.Len(t, summary.Records, 7)
	})

	t.Run("capacity is clamped", func(t *testing.T) {
		s := NewSummarizer(0, 0)
		operateAll(t, s, "a", "b")

		summary, err := s.Flush()
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Capacity)
		assert.Equal(t, uint64(1), summary.Evictions)
		assert.Equal(t, []Record{{Key: "b", Count: 1}}, summary.Records)
	})

	t.Run("no keys after flush", func(t *testing.T) {
		s := NewSummarizer(0, 3)
		operateAll(t, s, "a")

		_, err := s.Flush()
		require.NoError(t, err)

		assert.ErrorIs(t, s.Operate("b"), ErrFlushed)

		_, err = s.Flush()
		assert.ErrorIs(t, err, ErrFlushed)
	})

	t.Run("empty partition", func(t *testing.T) {
		s := NewSummarizer(1, 3)

		summary, err := s.Flush()
		require.NoError(t, err)
		assert.Empty(t, summary.Records)
		assert.True(t, summary.Exact())
	})
}
