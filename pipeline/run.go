package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vitalvas/topn/xlogger"
)

const (
	batchSize   = 256
	feedBuffer  = 16
	maxLineSize = 16 << 20
)

// Options configures Run.
type Options struct {
	Capacity   int
	Partitions int
	// TopK bounds the final result. Zero keeps every merged key.
	TopK      int
	Separator string
	Lowercase bool
	// PartialsDir, when set, receives one CBOR summary file per partition.
	PartialsDir string
	Logger      *slog.Logger
}

// Report is the merged outcome of a Run.
type Report struct {
	Records    []Record
	Keys       uint64
	Distinct   int
	Partitions int
	// Exact is true when no partition evicted a key, so every merged count
	// equals the true number of occurrences.
	Exact bool
}

// Run splits the inputs into keys, routes every key to a partition, keeps a
// Space-Saving summary per partition and merges the drained summaries.
func Run(ctx context.Context, opts Options, inputs ...io.Reader) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = xlogger.Discard()
	}

	tokenizer, err := NewTokenizer(opts.Separator, opts.Lowercase)
	if err != nil {
		return nil, err
	}

	if opts.PartialsDir != "" {
		if err := os.MkdirAll(opts.PartialsDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create partials dir: %w", err)
		}
	}

	partitioner := NewPartitioner(opts.Partitions)
	n := partitioner.Len()

	logger.Info("pipeline started", "partitions", n, "capacity", opts.Capacity, "inputs", len(inputs))

	g, ctx := newGroup(ctx)

	feeds := make([]chan []string, n)
	for i := range feeds {
		feeds[i] = make(chan []string, feedBuffer)
	}

	// every partition sends exactly one frame, so sends never block
	frames := make(chan []byte, n)

	for i := range n {
		g.Go(fmt.Sprintf("partition %d", i), func(ctx context.Context) error {
			return runPartition(ctx, i, opts, feeds[i], frames, logger)
		})
	}

	g.Go("reader", func(ctx context.Context) error {
		defer func() {
			for _, feed := range feeds {
				close(feed)
			}
		}()

		return readInputs(ctx, inputs, tokenizer, partitioner, feeds)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(frames)

	agg := NewAggregator()
	for frame := range frames {
		summary, err := DecodeSummary(frame)
		if err != nil {
			return nil, err
		}
		agg.Add(summary)
	}

	report := &Report{
		Records:    agg.Result(opts.TopK),
		Keys:       agg.Keys(),
		Distinct:   agg.Len(),
		Partitions: agg.Summaries(),
		Exact:      agg.Exact(),
	}

	if !report.Exact {
		logger.Warn("partitions evicted keys, counts are approximate", "capacity", opts.Capacity)
	}

	logger.Info("pipeline finished",
		"keys", report.Keys,
		"distinct", report.Distinct,
		"records", len(report.Records),
		"exact", report.Exact,
	)

	return report, nil
}

func readInputs(ctx context.Context, inputs []io.Reader, tokenizer *Tokenizer, partitioner Partitioner, feeds []chan []string) error {
	batches := make([][]string, len(feeds))

	send := func(p int) error {
		select {
		case feeds[p] <- batches[p]:
			batches[p] = nil
			return nil
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}

	for i, input := range inputs {
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			for _, key := range tokenizer.Split(scanner.Text()) {
				p := partitioner.Partition(key)
				batches[p] = append(batches[p], key)

				if len(batches[p]) == batchSize {
					if err := send(p); err != nil {
						return err
					}
				}
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input %d: %w", i, err)
		}
	}

	for p := range batches {
		if len(batches[p]) > 0 {
			if err := send(p); err != nil {
				return err
			}
		}
	}

	return nil
}

func runPartition(ctx context.Context, partition int, opts Options, feed <-chan []string, frames chan<- []byte, logger *slog.Logger) error {
	summarizer := NewSummarizer(partition, opts.Capacity)

	for done := false; !done; {
		select {
		case batch, ok := <-feed:
			if !ok {
				done = true
				break
			}
			for _, key := range batch {
				if err := summarizer.Operate(key); err != nil {
					return err
				}
			}

		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}

	summary, err := summarizer.Flush()
	if err != nil {
		return err
	}

	if opts.PartialsDir != "" {
		path := filepath.Join(opts.PartialsDir, PartFileName(partition))
		if err := WriteSummaryFile(path, summary); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	frame, err := EncodeSummary(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	frames <- frame

	logger.Debug("partition flushed",
		"partition", partition,
		"keys", summary.Keys,
		"records", len(summary.Records),
		"evictions", summary.Evictions,
	)

	return nil
}
