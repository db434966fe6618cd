package bench_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/stashbench/backend"
	"github.com/jrife/stashbench/bench"
	"github.com/jrife/stashbench/codec"
	"github.com/jrife/stashbench/generator"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
	"github.com/jrife/stashbench/value"
	"go.uber.org/zap"
)

var errBroken = errors.New("broken")

var timingLine = regexp.MustCompile(`^- (dumped|loaded) in \d+\.\d{2}s \(\d+% CPU\)$`)

func corpus() value.Value {
	return value.Tuple{
		value.Bytes{1, 2, 3},
		value.List{value.Int(7), value.Text("abc")},
		value.NewDict(value.Pair{Key: value.Int(1), Value: value.NewSet(value.Real(2.5))}),
	}
}

// writeCorpus primes a cache file so runs skip generation
func writeCorpus(t *testing.T, v value.Value) generator.CorpusConfig {
	path := filepath.Join(t.TempDir(), "corpus.cbor")
	data, err := codec.EncodeValue(v)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	return generator.CorpusConfig{Path: path}
}

// codecBackend stores encoded values in memory. It can be
// made to corrupt what it returns or to fail.
type codecBackend struct {
	name     string
	values   [][]byte
	mutate   bool
	storeErr error
	closed   bool
}

func (b *codecBackend) Name() string {
	return b.name
}

func (b *codecBackend) Store(v value.Value) (backend.Handle, error) {
	if b.storeErr != nil {
		return nil, b.storeErr
	}

	data, err := codec.EncodeValue(v)

	if err != nil {
		return nil, err
	}

	b.values = append(b.values, data)

	return backend.Handle{byte(len(b.values) - 1)}, nil
}

func (b *codecBackend) Retrieve(h backend.Handle) (value.Value, error) {
	v, err := codec.DecodeValue(b.values[h[0]])

	if err != nil {
		return nil, err
	}

	if b.mutate {
		value.Walk(v, func(v value.Value) bool {
			if data, ok := v.(value.Bytes); ok && len(data) > 0 {
				data[0] ^= 0xff

				return false
			}

			return true
		})
	}

	return v, nil
}

func (b *codecBackend) Close() error {
	b.closed = true

	return nil
}

type codecPlugin struct {
	backend *codecBackend
	// path is the directory the backend was given
	path string
	// touch creates a file in the backend directory
	touch bool
}

func (plugin *codecPlugin) Name() string {
	return plugin.backend.name
}

func (plugin *codecPlugin) NewBackend(options backend.Options) (backend.Backend, error) {
	plugin.path = options.Path

	if plugin.touch {
		if err := os.MkdirAll(options.Path, 0o755); err != nil {
			return nil, err
		}

		if err := os.WriteFile(filepath.Join(options.Path, "data"), []byte("x"), 0o644); err != nil {
			return nil, err
		}
	}

	return plugin.backend, nil
}

func newDriver(config bench.Config) (*bench.Driver, *bytes.Buffer) {
	report := &bytes.Buffer{}
	config.Report = report
	config.Logger = zap.NewNop()

	return bench.New(config), report
}

func reportLines(report *bytes.Buffer) []string {
	return strings.Split(strings.TrimSuffix(report.String(), "\n"), "\n")
}

func TestMeasurementUtilization(t *testing.T) {
	testCases := map[string]struct {
		measurement bench.Measurement
		utilization float64
	}{
		"zero-elapsed": {
			measurement: bench.Measurement{CPU: time.Second},
			utilization: 0,
		},
		"half": {
			measurement: bench.Measurement{Elapsed: 2 * time.Second, CPU: time.Second},
			utilization: 50,
		},
		"over-100": {
			measurement: bench.Measurement{Elapsed: time.Second, CPU: 3 * time.Second},
			utilization: 300,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			if utilization := testCase.measurement.Utilization(); utilization != testCase.utilization {
				t.Fatalf("expected utilization %f, got %f", testCase.utilization, utilization)
			}
		})
	}
}

func TestMeasurementString(t *testing.T) {
	measurement := bench.Measurement{Label: "dumped", Elapsed: 1500 * time.Millisecond, CPU: 750 * time.Millisecond}

	if measurement.String() != "dumped in 1.50s (50% CPU)" {
		t.Fatalf("unexpected measurement string %q", measurement.String())
	}
}

func TestTimeOperationZeroDuration(t *testing.T) {
	driver, report := newDriver(bench.Config{})

	measurement, err := driver.TimeOperation("dumped", func() error { return nil })

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if measurement.Utilization() < 0 {
		t.Fatalf("expected non-negative utilization, got %f", measurement.Utilization())
	}

	lines := reportLines(report)

	if len(lines) != 1 || !timingLine.MatchString(lines[0]) {
		t.Fatalf("unexpected report %q", report.String())
	}
}

func TestTimeOperationError(t *testing.T) {
	driver, report := newDriver(bench.Config{})

	_, err := driver.TimeOperation("dumped", func() error { return errBroken })

	if !errors.Is(err, errBroken) {
		t.Fatalf("expected errBroken, got %#v", err)
	}

	if report.Len() != 0 {
		t.Fatalf("expected nothing to be reported, got %q", report.String())
	}
}

func TestRoundTrip(t *testing.T) {
	driver, report := newDriver(bench.Config{})
	b := &codecBackend{name: "codec"}

	result := driver.RoundTrip(b.name, corpus(), b.Store, b.Retrieve)

	if result.Err != nil {
		t.Fatalf("expected err to be nil, got %#v", result.Err)
	}

	if result.State != bench.Verified {
		t.Fatalf("expected state %s, got %s", bench.Verified, result.State)
	}

	lines := reportLines(report)

	if len(lines) != 2 {
		t.Fatalf("expected two timing lines, got %q", report.String())
	}

	for _, line := range lines {
		if !timingLine.MatchString(line) {
			t.Fatalf("unexpected timing line %q", line)
		}
	}

	if !strings.HasPrefix(lines[0], "- dumped") || !strings.HasPrefix(lines[1], "- loaded") {
		t.Fatalf("expected dumped then loaded, got %q", report.String())
	}
}

func TestRoundTripOneWay(t *testing.T) {
	driver, report := newDriver(bench.Config{})
	b := &codecBackend{name: "codec"}

	result := driver.RoundTrip(b.name, corpus(), b.Store, nil)

	if result.State != bench.Encoded {
		t.Fatalf("expected state %s, got %s", bench.Encoded, result.State)
	}

	if lines := reportLines(report); len(lines) != 1 {
		t.Fatalf("expected one timing line, got %q", report.String())
	}
}

func TestRoundTripMismatch(t *testing.T) {
	driver, _ := newDriver(bench.Config{})
	b := &codecBackend{name: "mutating", mutate: true}

	result := driver.RoundTrip(b.name, corpus(), b.Store, b.Retrieve)

	if result.State != bench.Failed {
		t.Fatalf("expected state %s, got %s", bench.Failed, result.State)
	}

	if !errors.Is(result.Err, bench.ErrRoundTripMismatch) {
		t.Fatalf("expected ErrRoundTripMismatch, got %#v", result.Err)
	}

	var mismatch *bench.MismatchError

	if !errors.As(result.Err, &mismatch) {
		t.Fatalf("expected a *MismatchError, got %#v", result.Err)
	}

	if mismatch.Name != "mutating" || mismatch.Diff == "" {
		t.Fatalf("unexpected mismatch %#v", mismatch)
	}
}

func TestRoundTripEncodeFailure(t *testing.T) {
	driver, _ := newDriver(bench.Config{})
	b := &codecBackend{name: "broken", storeErr: errBroken}

	result := driver.RoundTrip(b.name, corpus(), b.Store, b.Retrieve)

	if result.State != bench.Failed {
		t.Fatalf("expected state %s, got %s", bench.Failed, result.State)
	}

	if !errors.Is(result.Err, errBroken) {
		t.Fatalf("expected errBroken, got %#v", result.Err)
	}
}

func TestRunAllNoBackends(t *testing.T) {
	driver, report := newDriver(bench.Config{
		Corpus:   writeCorpus(t, corpus()),
		Registry: bench.StaticRegistry{},
	})

	summary, err := driver.RunAll(context.Background())

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	lines := reportLines(report)

	if len(lines) != 3 || lines[0] != bench.BaselineName || !timingLine.MatchString(lines[1]) || !timingLine.MatchString(lines[2]) {
		t.Fatalf("expected only the baseline to be reported, got %q", report.String())
	}

	states := []bench.State{}

	for _, result := range summary.Results {
		states = append(states, result.State)
	}

	diff := cmp.Diff([]bench.State{bench.Verified}, states)

	if diff != "" {
		t.Fatalf(diff)
	}
}

func TestRunAllGeneratesMissingCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.cbor")
	driver, report := newDriver(bench.Config{
		Corpus:   generator.CorpusConfig{Path: path, Candidates: 2, Depth: 3},
		Registry: bench.StaticRegistry{},
	})

	if _, err := driver.RunAll(context.Background()); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !strings.HasPrefix(report.String(), "generating test object ...\n0. ") {
		t.Fatalf("expected generation progress, got %q", report.String())
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected corpus cache to exist, got %#v", err)
	}
}

func TestRunAllDefaultRegistry(t *testing.T) {
	driver, report := newDriver(bench.Config{
		Corpus:   writeCorpus(t, corpus()),
		Backends: []string{"ram", "fsdb", "missing"},
	})

	summary, err := driver.RunAll(context.Background())

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	names := []string{}

	for _, result := range summary.Results {
		names = append(names, result.Name)

		if result.State != bench.Verified && result.State != bench.Encoded {
			t.Fatalf("expected %s to succeed, got %s", result.Name, result.State)
		}
	}

	diff := cmp.Diff([]string{bench.BaselineName, "nil", "ram", "fsdb"}, names)

	if diff != "" {
		t.Fatalf(diff)
	}

	if !strings.Contains(report.String(), "\nram\n- dumped in ") {
		t.Fatalf("expected ram to be reported, got %q", report.String())
	}
}

func TestRunAllMismatchFailsFast(t *testing.T) {
	mutating := &codecBackend{name: "mutating", mutate: true}
	healthy := &codecBackend{name: "healthy"}
	driver, _ := newDriver(bench.Config{
		Corpus: writeCorpus(t, corpus()),
		Registry: bench.StaticRegistry{Plugins: []backend.Plugin{
			&codecPlugin{backend: mutating},
			&codecPlugin{backend: healthy},
		}},
	})

	summary, err := driver.RunAll(context.Background())

	if !errors.Is(err, bench.ErrRoundTripMismatch) {
		t.Fatalf("expected ErrRoundTripMismatch, got %#v", err)
	}

	if _, ok := summary.Result("healthy"); ok {
		t.Fatalf("expected the run to stop at the first failure")
	}

	if !mutating.closed {
		t.Fatalf("expected the failed backend to be closed")
	}
}

func TestRunAllIsolateFailures(t *testing.T) {
	driver, _ := newDriver(bench.Config{
		Corpus:          writeCorpus(t, corpus()),
		IsolateFailures: true,
		Registry: bench.StaticRegistry{
			Plugins: []backend.Plugin{
				&codecPlugin{backend: &codecBackend{name: "broken", storeErr: errBroken}},
				&codecPlugin{backend: &codecBackend{name: "mutating", mutate: true}},
				&codecPlugin{backend: &codecBackend{name: "healthy"}},
			},
			HashBackend: backend.NewStashHasher("nil", nil),
		},
	})

	summary, err := driver.RunAll(context.Background())

	if !errors.Is(err, errBroken) || !errors.Is(err, bench.ErrRoundTripMismatch) {
		t.Fatalf("expected both failures to be returned, got %#v", err)
	}

	healthy, ok := summary.Result("healthy")

	if !ok || healthy.State != bench.Verified {
		t.Fatalf("expected healthy to be verified, got %#v", healthy)
	}

	if len(summary.Failed()) != 2 {
		t.Fatalf("expected two failures, got %d", len(summary.Failed()))
	}

	hashed, ok := summary.Result("nil")

	if !ok || hashed.State != bench.Encoded {
		t.Fatalf("expected the hasher to be timed, got %#v", hashed)
	}
}

func TestRunAllRemovesTempDirOnFailure(t *testing.T) {
	plugin := &codecPlugin{backend: &codecBackend{name: "disk", storeErr: errBroken}, touch: true}
	driver, _ := newDriver(bench.Config{
		Corpus:   writeCorpus(t, corpus()),
		Registry: bench.StaticRegistry{Plugins: []backend.Plugin{plugin}},
	})

	_, err := driver.RunAll(context.Background())

	if !errors.Is(err, errBroken) {
		t.Fatalf("expected errBroken, got %#v", err)
	}

	if plugin.path == "" {
		t.Fatalf("expected the backend to be created")
	}

	if _, err := os.Stat(filepath.Dir(plugin.path)); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected the temporary directory to be removed, got %#v", err)
	}
}

func TestRunAllGivesBackendsDistinctPaths(t *testing.T) {
	a := &codecPlugin{backend: &codecBackend{name: "a"}, touch: true}
	b := &codecPlugin{backend: &codecBackend{name: "b"}, touch: true}
	driver, _ := newDriver(bench.Config{
		Corpus:   writeCorpus(t, corpus()),
		Registry: bench.StaticRegistry{Plugins: []backend.Plugin{a, b}},
	})

	if _, err := driver.RunAll(context.Background()); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if a.path == b.path || filepath.Dir(a.path) != filepath.Dir(b.path) {
		t.Fatalf("expected sibling paths, got %s and %s", a.path, b.path)
	}
}

func TestRunAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver, _ := newDriver(bench.Config{
		Corpus: writeCorpus(t, corpus()),
		Registry: bench.StaticRegistry{Plugins: []backend.Plugin{
			backend.NewStashPlugin(&ram.RAMPlugin{}),
		}},
	})

	summary, err := driver.RunAll(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %#v", err)
	}

	if _, ok := summary.Result("ram"); ok {
		t.Fatalf("expected ram not to run")
	}
}

func TestSummaryWrite(t *testing.T) {
	summary := bench.Summary{Results: []bench.Result{
		{Name: "cbor", State: bench.Verified, Dumped: bench.Measurement{Elapsed: time.Second}, Loaded: bench.Measurement{Elapsed: 2 * time.Second}},
		{Name: "nil", State: bench.Encoded, Dumped: bench.Measurement{Elapsed: time.Second}},
		{Name: "lsm", State: bench.Failed, Err: errBroken},
	}}
	var out bytes.Buffer

	if err := summary.Write(&out); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	expected := "cbor       verified  dumped 1.00s loaded 2.00s\n" +
		"nil        encoded   dumped 1.00s\n" +
		"lsm        failed   \n"

	diff := cmp.Diff(expected, out.String())

	if diff != "" {
		t.Fatalf(diff)
	}
}

func TestStateString(t *testing.T) {
	if bench.NotRun.String() != "not run" || bench.State(99).String() != "State(99)" {
		t.Fatalf("unexpected state names")
	}
}
