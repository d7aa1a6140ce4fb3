package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vitalvas/topn/config"
	"github.com/vitalvas/topn/pipeline"
	"github.com/vitalvas/topn/xlogger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "topn:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("topn", flag.ContinueOnError)
	flags.SetOutput(stderr)

	configFile := flags.String("config", "", "path to a yaml or json config file")
	envPrefix := flags.String("env-prefix", "TOPN", "prefix of environment overrides")

	if err := flags.Parse(args); err != nil {
		return err
	}

	var options []config.Option
	if *configFile != "" {
		options = append(options, config.WithFiles(*configFile))
	}
	if *envPrefix != "" {
		options = append(options, config.WithEnv(*envPrefix))
	}

	conf, err := config.Load(options...)
	if err != nil {
		return err
	}

	if flags.NArg() > 0 {
		conf.Inputs = flags.Args()
	}

	if err := conf.Validate(); err != nil {
		return err
	}

	logger := xlogger.New(conf.Logger, stderr)

	inputs, closeInputs, err := openInputs(conf.Inputs, stdin)
	if err != nil {
		return err
	}
	defer closeInputs()

	report, err := pipeline.Run(ctx, pipeline.Options{
		Capacity:    conf.Capacity,
		Partitions:  conf.Partitions,
		TopK:        conf.TopK,
		Separator:   conf.Separator,
		Lowercase:   conf.Lowercase,
		PartialsDir: conf.PartialsDir,
		Logger:      logger,
	}, inputs...)
	if err != nil {
		return err
	}

	return writeOutput(conf.Output, stdout, report.Records, logger)
}

func openInputs(paths []string, stdin io.Reader) ([]io.Reader, func(), error) {
	if len(paths) == 0 {
		return []io.Reader{stdin}, func() {}, nil
	}

	files := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	inputs := make([]io.Reader, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		inputs = append(inputs, f)
	}

	return inputs, closeAll, nil
}

func writeOutput(path string, stdout io.Writer, records []pipeline.Record, logger *slog.Logger) (err error) {
	if path == "" {
		return pipeline.WriteRecords(stdout, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := pipeline.WriteRecords(f, records); err != nil {
		return err
	}

	logger.Info("records written", "path", path, "records", len(records))

	return nil
}
