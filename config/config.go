// Package config loads stashbench configuration files.
//
// A configuration file is YAML:
//
//	corpus:
//	  cache_path: stashbench.cbor
//	  seed: 0
//	  candidates: 10
//	  depth: 12
//	backends: [ram, fsdb, lsm]
//	isolate_failures: false
//	log_level: warn
//
// Omitted fields keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jrife/stashbench/bench"
	"github.com/jrife/stashbench/generator"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate
var ErrInvalid = errors.New("invalid configuration")

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is the top-level configuration
type Config struct {
	Corpus CorpusConfig `yaml:"corpus"`
	// Backends restricts the run to the named backends.
	// Empty runs all of them.
	Backends        []string `yaml:"backends"`
	IsolateFailures bool     `yaml:"isolate_failures"`
	LogLevel        string   `yaml:"log_level"`
}

// CorpusConfig configures corpus generation and caching
type CorpusConfig struct {
	CachePath  string `yaml:"cache_path"`
	Seed       uint64 `yaml:"seed"`
	Candidates int    `yaml:"candidates"`
	Depth      int    `yaml:"depth"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			CachePath:  generator.DefaultCorpusPath,
			Seed:       generator.DefaultSeed,
			Candidates: generator.DefaultCandidates,
			Depth:      generator.DefaultDepth,
		},
		Backends: []string{},
		LogLevel: "warn",
	}
}

// Load reads the configuration file at path over the defaults
// and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("could not read configuration %s: %w", path, err)
	}

	config, err := Parse(data)

	if err != nil {
		return nil, fmt.Errorf("could not load configuration %s: %w", path, err)
	}

	return config, nil
}

// Parse decodes YAML configuration over the defaults and
// validates the result. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that every field holds a usable value
func (config *Config) Validate() error {
	switch {
	case config.Corpus.CachePath == "":
		return fmt.Errorf("%w: corpus.cache_path is empty", ErrInvalid)
	case config.Corpus.Candidates < 1:
		return fmt.Errorf("%w: corpus.candidates must be at least 1, got %d", ErrInvalid, config.Corpus.Candidates)
	case config.Corpus.Depth < 1:
		return fmt.Errorf("%w: corpus.depth must be at least 1, got %d", ErrInvalid, config.Corpus.Depth)
	case !logLevels[config.LogLevel]:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, config.LogLevel)
	}

	seen := map[string]bool{}

	for _, name := range config.Backends {
		if name == "" {
			return fmt.Errorf("%w: empty backend name", ErrInvalid)
		}

		if seen[name] {
			return fmt.Errorf("%w: backend %s listed twice", ErrInvalid, name)
		}

		seen[name] = true
	}

	return nil
}

// Bench returns the driver configuration this configuration describes
func (config *Config) Bench(logger *zap.Logger) bench.Config {
	return bench.Config{
		Corpus: generator.CorpusConfig{
			Path:       config.Corpus.CachePath,
			Seed:       config.Corpus.Seed,
			Candidates: config.Corpus.Candidates,
			Depth:      config.Corpus.Depth,
			Logger:     logger,
		},
		Backends:        config.Backends,
		IsolateFailures: config.IsolateFailures,
		Logger:          logger,
	}
}
