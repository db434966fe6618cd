package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jrife/stashbench/codec"
	"github.com/jrife/stashbench/value"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

const (
	// DefaultCorpusPath is where the corpus is cached when
	// no path is configured. It is relative to the working
	// directory.
	DefaultCorpusPath = "stashbench.cbor"
	// DefaultSeed seeds corpus generation
	DefaultSeed = 0
	// DefaultCandidates is the number of candidates generated
	// when looking for the largest one
	DefaultCandidates = 10
	// DefaultDepth bounds the nesting of corpus candidates
	DefaultDepth = 12
	// CacheFileMode is the mode of a newly written cache file
	CacheFileMode = 0o644
)

// maxDiagnosisLength bounds the CBOR diagnosis logged
// for a cache file that does not decode
const maxDiagnosisLength = 512

// CorpusConfig contains configuration for
// loading or generating the corpus
type CorpusConfig struct {
	// Path of the cache file
	Path string
	// Seed for the candidate generator
	Seed uint64
	// Candidates is the number of candidates to generate
	Candidates int
	// Depth bounds candidate nesting
	Depth int
	// Progress receives the human-readable generation report.
	// Nothing is written if it is nil.
	Progress io.Writer
	Logger   *zap.Logger
}

func (config CorpusConfig) withDefaults() CorpusConfig {
	if config.Path == "" {
		config.Path = DefaultCorpusPath
	}

	if config.Candidates <= 0 {
		config.Candidates = DefaultCandidates
	}

	if config.Depth <= 0 {
		config.Depth = DefaultDepth
	}

	if config.Progress == nil {
		config.Progress = io.Discard
	}

	if config.Logger == nil {
		config.Logger = zap.L()
	}

	return config
}

// LoadCorpus returns the benchmark corpus. If the cache file
// exists its contents are decoded and returned unchanged. Otherwise
// the corpus is generated with GenerateCorpus, written to the cache
// file and returned. A cache file that exists but cannot be read or
// decoded is an error; it is never silently regenerated.
func LoadCorpus(config CorpusConfig) (value.Value, error) {
	config = config.withDefaults()
	logger := config.Logger.With(zap.String("operation", "LoadCorpus"), zap.String("path", config.Path))

	data, err := os.ReadFile(config.Path)

	if err == nil {
		corpus, err := codec.DecodeValue(data)

		if err != nil {
			logCorruptCache(logger, data, err)

			return nil, fmt.Errorf("could not decode corpus cache %s: %w", config.Path, err)
		}

		logger.Info("loaded corpus from cache", zap.String("size", humanize.Bytes(uint64(len(data)))), zap.String("corpus", value.Describe(corpus)))

		return corpus, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read corpus cache %s: %w", config.Path, err)
	}

	logger.Debug("corpus cache missing")

	encoded, err := GenerateCorpus(config)

	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create corpus cache directory %s: %w", dir, err)
		}
	}

	if err := atomic.WriteFile(config.Path, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("could not write corpus cache %s: %w", config.Path, err)
	}

	// atomic.WriteFile leaves its temp file's 0600 mode behind
	if err := os.Chmod(config.Path, CacheFileMode); err != nil {
		return nil, fmt.Errorf("could not set mode of corpus cache %s: %w", config.Path, err)
	}

	corpus, err := codec.DecodeValue(encoded)

	if err != nil {
		return nil, fmt.Errorf("could not decode generated corpus: %w", err)
	}

	logger.Info("generated corpus", zap.String("size", humanize.Bytes(uint64(len(encoded)))), zap.String("corpus", value.Describe(corpus)))

	return corpus, nil
}

// GenerateCorpus generates config.Candidates values at config.Depth
// from a generator seeded with config.Seed and returns the reference
// encoding of the one whose encoding is longest. Ties go to the
// earliest candidate. It does not touch the cache file.
func GenerateCorpus(config CorpusConfig) ([]byte, error) {
	config = config.withDefaults()
	generator := NewSeeded(config.Seed)

	fmt.Fprintln(config.Progress, "generating test object ...")

	var largest []byte

	for i := 0; i < config.Candidates; i++ {
		candidate := generator.Generate(config.Depth, false)
		encoded, err := codec.EncodeValue(candidate)

		if err != nil {
			return nil, fmt.Errorf("could not encode candidate %d: %w", i, err)
		}

		fmt.Fprintf(config.Progress, "%d. %d\n", i, len(encoded))

		if largest == nil || len(encoded) > len(largest) {
			largest = encoded
		}
	}

	return largest, nil
}

func logCorruptCache(logger *zap.Logger, data []byte, err error) {
	fields := []zap.Field{zap.Error(err), zap.Int("size", len(data))}
	diagnosis, diagnoseErr := codec.Diagnose(data)

	if diagnoseErr != nil {
		fields = append(fields, zap.NamedError("diagnoseError", diagnoseErr))
	} else {
		if len(diagnosis) > maxDiagnosisLength {
			diagnosis = diagnosis[:maxDiagnosisLength] + "..."
		}

		fields = append(fields, zap.String("diagnosis", diagnosis))
	}

	logger.Warn("corpus cache is corrupt", fields...)
}
