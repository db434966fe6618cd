// stashbench times the stash serializer against a reference
// serializer over a family of blob stores.
//
// It loads (or generates and caches) a large random test value,
// round trips it through every enabled target and prints how long
// each store and retrieve took. A target that gives back anything
// other than what it was given fails the run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jrife/stashbench/backend/plugins"
	"github.com/jrife/stashbench/bench"
	"github.com/jrife/stashbench/config"
	"github.com/jrife/stashbench/utils/log"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	var configPath string
	var list bool
	var summary bool

	c := config.Default()
	flagSet := pflag.NewFlagSet("stashbench", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	flagSet.StringVar(&c.Corpus.CachePath, "cache", c.Corpus.CachePath, "corpus cache file")
	flagSet.Uint64Var(&c.Corpus.Seed, "seed", c.Corpus.Seed, "corpus generator seed")
	flagSet.IntVar(&c.Corpus.Candidates, "candidates", c.Corpus.Candidates, "number of corpus candidates to generate")
	flagSet.IntVar(&c.Corpus.Depth, "depth", c.Corpus.Depth, "corpus nesting depth")
	flagSet.StringSliceVar(&c.Backends, "backends", c.Backends, "backends to run (default all)")
	flagSet.BoolVar(&c.IsolateFailures, "isolate-failures", c.IsolateFailures, "keep going after a backend fails")
	flagSet.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	flagSet.BoolVar(&list, "list", false, "list the available backends and exit")
	flagSet.BoolVar(&summary, "summary", false, "print a summary table after the run")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if configPath != "" {
		loaded, err := config.Load(configPath)

		if err != nil {
			return err
		}

		// Flags given on the command line win over the file
		flagSet.Visit(func(flag *pflag.Flag) {
			switch flag.Name {
			case "cache":
				loaded.Corpus.CachePath = c.Corpus.CachePath
			case "seed":
				loaded.Corpus.Seed = c.Corpus.Seed
			case "candidates":
				loaded.Corpus.Candidates = c.Corpus.Candidates
			case "depth":
				loaded.Corpus.Depth = c.Corpus.Depth
			case "backends":
				loaded.Backends = c.Backends
			case "isolate-failures":
				loaded.IsolateFailures = c.IsolateFailures
			case "log-level":
				loaded.LogLevel = c.LogLevel
			}
		})

		c = loaded
	}

	if err := c.Validate(); err != nil {
		return err
	}

	if list {
		fmt.Fprintln(stdout, strings.Join(append([]string{bench.BaselineName, plugins.HasherName}, backendNames()...), "\n"))

		return nil
	}

	logger, err := log.NewConsoleLogger(c.LogLevel)

	if err != nil {
		return err
	}

	defer logger.Sync() //nolint:errcheck

	benchConfig := c.Bench(logger)
	benchConfig.Report = stdout
	result, err := bench.New(benchConfig).RunAll(log.WithLogger(ctx, logger))

	if summary {
		fmt.Fprintln(stdout)

		if writeErr := result.Write(stdout); writeErr != nil {
			logger.Warn("could not write summary", zap.Error(writeErr))
		}
	}

	return err
}

func backendNames() []string {
	names := []string{}

	for _, plugin := range plugins.Plugins() {
		names = append(names, plugin.Name())
	}

	return names
}
