package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteRecords(t *testing.T) {
	t.Run("tab separated lines", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteRecords(&buf, []Record{{Key: "S", Count: 6}, {Key: "B", Count: 3}})

		assert.NoError(t, err)
		assert.Equal(t, "S\t6\nB\t3\n", buf.String())
	})

	t.Run("no records", func(t *testing.T) {
		var buf bytes.Buffer
		assert.NoError(t, WriteRecords(&buf, nil))
		assert.Empty(t, buf.String())
	})

	t.Run("write error", func(t *testing.T) {
		err := WriteRecords(failingWriter{}, []Record{{Key: "a", Count: 1}})
		assert.EqualError(t, err, "disk full")
	})
}
