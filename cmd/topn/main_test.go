package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/topn/config"
)

func TestRun(t *testing.T) {
	t.Run("stdin to stdout", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		err := run(context.Background(), []string{"-env-prefix", "TOPN_TEST_NONE"},
			strings.NewReader("b a b c b a\n"), &stdout, &stderr)
		require.NoError(t, err)

		assert.Equal(t, "b\t3\na\t2\nc\t1\n", stdout.String())
		assert.Contains(t, stderr.String(), "pipeline finished")
	})

	t.Run("config file and input files", func(t *testing.T) {
		dir := t.TempDir()

		input := filepath.Join(dir, "words.txt")
		require.NoError(t, os.WriteFile(input, []byte("x y x\nz x y\n"), 0o600))

		output := filepath.Join(dir, "out.tsv")
		conf := filepath.Join(dir, "topn.yaml")
		require.NoError(t, os.WriteFile(conf, []byte(
			"capacity: 5\npartitions: 2\ntop_k: 2\noutput: "+output+"\nlogger:\n  level: error\n",
		), 0o600))

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-config", conf, input}, nil, &stdout, &stderr)
		require.NoError(t, err)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "x\t3\ny\t2\n", string(data))
		assert.Empty(t, stdout.String())
		assert.Empty(t, stderr.String())
	})

	t.Run("invalid capacity is rejected", func(t *testing.T) {
		t.Setenv("TOPN_CAPACITY", "0")

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), nil, strings.NewReader("a"), &stdout, &stderr)
		assert.ErrorIs(t, err, config.ErrInvalidCapacity)
	})

	t.Run("missing input file", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.txt")}, nil, &stdout, &stderr)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown flag", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-nope"}, nil, &stdout, &stderr)
		assert.Error(t, err)
	})
}
