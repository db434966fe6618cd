// Package bench times test values through the reference
// serializer and every enabled backend and verifies that
// each one gives back exactly what it was given.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/stashbench/backend"
	"github.com/jrife/stashbench/codec"
	"github.com/jrife/stashbench/generator"
	"github.com/jrife/stashbench/utils/log"
	"github.com/jrife/stashbench/utils/tempdir"
	"github.com/jrife/stashbench/value"
	"go.uber.org/zap"
)

const (
	// BaselineName is the report name of the reference serializer
	BaselineName = "cbor"
	// TempDirPattern names the scoped directory on-disk backends use
	TempDirPattern = "stashbench-*"
)

// EncodeFunc stores or encodes a value and returns a handle to it
type EncodeFunc func(v value.Value) (backend.Handle, error)

// DecodeFunc returns the value a handle refers to
type DecodeFunc func(h backend.Handle) (value.Value, error)

// Config contains configuration for a benchmark run
type Config struct {
	Corpus generator.CorpusConfig
	// Backends names the backends to run. An empty
	// list runs every registered backend.
	Backends []string
	// IsolateFailures keeps benchmarking the remaining targets
	// after one fails. By default the first failure ends the run.
	IsolateFailures bool
	// Registry supplies the targets. DefaultRegistry is used if it is nil.
	Registry Registry
	// Report receives the human-readable timing report.
	// os.Stdout is used if it is nil.
	Report io.Writer
	Logger *zap.Logger
}

// Driver runs benchmarks. It runs one target at a time.
type Driver struct {
	config Config
	report io.Writer
	logger *zap.Logger
}

// New creates a driver
func New(config Config) *Driver {
	if config.Registry == nil {
		config.Registry = DefaultRegistry()
	}

	if config.Report == nil {
		config.Report = os.Stdout
	}

	if config.Logger == nil {
		config.Logger = zap.L()
	}

	return &Driver{
		config: config,
		report: config.Report,
		logger: config.Logger,
	}
}

// TimeOperation runs op once and measures the wall clock and CPU time
// it takes. If op succeeds the measurement is reported as
// "- <label> in <T>s (<U>% CPU)". The error from op is returned as is.
func (driver *Driver) TimeOperation(label string, op func() error) (Measurement, error) {
	timer := StartTimer()
	err := op()
	measurement := timer.Stop(label)

	if err != nil {
		return measurement, err
	}

	fmt.Fprintf(driver.report, "- %s\n", measurement)

	return measurement, nil
}

// RoundTrip times encoding v and, if decode is not nil, decoding the
// resulting handle, then verifies that the decoded value equals v.
// A mismatch fails the target with a *MismatchError. Targets without
// a decode function end in the Encoded state.
func (driver *Driver) RoundTrip(name string, v value.Value, encode EncodeFunc, decode DecodeFunc) Result {
	result := Result{Name: name, State: Encoding}

	var handle backend.Handle

	measurement, err := driver.TimeOperation("dumped", func() error {
		var err error
		handle, err = encode(v)

		return err
	})

	result.Dumped = measurement

	if err != nil {
		return result.fail(fmt.Errorf("%s could not encode value: %w", name, err))
	}

	if decode == nil {
		result.State = Encoded

		return result
	}

	result.State = Decoding

	var decoded value.Value

	measurement, err = driver.TimeOperation("loaded", func() error {
		var err error
		decoded, err = decode(handle)

		return err
	})

	result.Loaded = measurement

	if err != nil {
		return result.fail(fmt.Errorf("%s could not decode value: %w", name, err))
	}

	if !value.Equal(v, decoded) {
		return result.fail(&MismatchError{Name: name, Diff: truncate(cmp.Diff(v, decoded))})
	}

	result.State = Verified

	return result
}

func (result Result) fail(err error) Result {
	result.State = Failed
	result.Err = err

	return result
}

func truncate(diff string) string {
	if len(diff) <= maxDiffLength {
		return diff
	}

	return diff[:maxDiffLength] + "\n... (truncated)"
}

// RunAgainstBackend prints the backend name and round trips v through it
func (driver *Driver) RunAgainstBackend(ctx context.Context, v value.Value, b backend.Backend) Result {
	if err := ctx.Err(); err != nil {
		return Result{Name: b.Name()}.fail(err)
	}

	fmt.Fprintln(driver.report, b.Name())

	return driver.RoundTrip(b.Name(), v, b.Store, b.Retrieve)
}

// RunAll loads the corpus and benchmarks the reference serializer,
// the one-way hasher and every enabled backend in that order. Backends
// run inside one scoped temporary directory, each in its own
// subdirectory, which is removed before RunAll returns. Backends the
// registry does not know are skipped. The returned summary holds a
// result for every target that ran. Unless IsolateFailures is set the
// first failure ends the run and is returned. Otherwise every failure
// is joined into the returned error.
func (driver *Driver) RunAll(ctx context.Context) (Summary, error) {
	logger, ctx := log.LoggerFromContext(ctx, driver.logger)
	logger = logger.With(zap.String("operation", "RunAll"))
	summary := Summary{}
	failures := []error{}

	record := func(result Result) error {
		summary.Results = append(summary.Results, result)

		if result.State != Failed {
			logger.Info("benchmarked target", zap.String("target", result.Name), zap.Stringer("state", result.State), zap.Duration("dumped", result.Dumped.Elapsed), zap.Duration("loaded", result.Loaded.Elapsed))

			return nil
		}

		logger.Error("target failed", zap.String("target", result.Name), zap.Error(result.Err))

		if !driver.config.IsolateFailures {
			return result.Err
		}

		failures = append(failures, result.Err)

		return nil
	}

	corpusConfig := driver.config.Corpus

	if corpusConfig.Progress == nil {
		corpusConfig.Progress = driver.report
	}

	if corpusConfig.Logger == nil {
		corpusConfig.Logger = logger
	}

	corpus, err := generator.LoadCorpus(corpusConfig)

	if err != nil {
		return summary, fmt.Errorf("could not load corpus: %w", err)
	}

	logger.Debug("loaded corpus", zap.Int("depth", value.Depth(corpus)), zap.Int("count", value.Count(corpus)))

	fmt.Fprintln(driver.report, BaselineName)

	if err := record(driver.RoundTrip(BaselineName, corpus, baselineEncode, baselineDecode)); err != nil {
		return summary, err
	}

	if hasher := driver.config.Registry.Hasher(); hasher != nil {
		fmt.Fprintln(driver.report, hasher.Name())

		if err := record(driver.RoundTrip(hasher.Name(), corpus, hasher.Hash, nil)); err != nil {
			return summary, err
		}
	}

	enabled, missing := driver.config.Registry.Enabled(driver.config.Backends)

	for _, name := range missing {
		logger.Debug("backend not available, skipping", zap.String("backend", name))
	}

	err = tempdir.Scope(TempDirPattern, logger, func(dir string) error {
		for _, plugin := range enabled {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := record(driver.runPlugin(ctx, corpus, plugin, dir, logger)); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return summary, err
	}

	return summary, errors.Join(failures...)
}

func (driver *Driver) runPlugin(ctx context.Context, corpus value.Value, plugin backend.Plugin, dir string, logger *zap.Logger) Result {
	path, err := tempdir.Sub(dir, plugin.Name())

	if err != nil {
		return Result{Name: plugin.Name()}.fail(err)
	}

	b, err := plugin.NewBackend(backend.Options{Path: path, Logger: logger})

	if err != nil {
		return Result{Name: plugin.Name()}.fail(fmt.Errorf("could not create backend %s: %w", plugin.Name(), err))
	}

	result := driver.RunAgainstBackend(ctx, corpus, b)

	if err := b.Close(); err != nil {
		if result.State != Failed {
			return result.fail(fmt.Errorf("could not close backend %s: %w", plugin.Name(), err))
		}

		logger.Warn("could not close failed backend", zap.String("backend", plugin.Name()), zap.Error(err))
	}

	return result
}

func baselineEncode(v value.Value) (backend.Handle, error) {
	return codec.Dumps(v)
}

func baselineDecode(h backend.Handle) (value.Value, error) {
	return codec.Loads(h)
}
