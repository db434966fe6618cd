package backend_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jrife/stashbench/backend"
	"github.com/jrife/stashbench/backend/plugins"
	"github.com/jrife/stashbench/generator"
	"github.com/jrife/stashbench/value"
	"go.uber.org/zap"
)

func newBackend(t *testing.T, plugin backend.Plugin) backend.Backend {
	b, err := plugin.NewBackend(backend.Options{
		Path:   filepath.Join(t.TempDir(), plugin.Name()),
		Logger: zap.NewNop(),
	})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	return b
}

func TestBackendRoundTrip(t *testing.T) {
	v := generator.NewSeeded(11).Generate(4, false)

	for _, plugin := range plugins.Plugins() {
		t.Run(plugin.Name(), func(t *testing.T) {
			b := newBackend(t, plugin)
			defer b.Close()

			if b.Name() != plugin.Name() {
				t.Fatalf("expected backend name %s, got %s", plugin.Name(), b.Name())
			}

			h, err := b.Store(v)

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			retrieved, err := b.Retrieve(h)

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if !value.Equal(v, retrieved) {
				t.Fatalf("expected retrieved value to equal stored value")
			}
		})
	}
}

func TestBackendHandlesMatchHasher(t *testing.T) {
	v := generator.NewSeeded(12).Generate(4, false)
	expected, err := plugins.Hasher().Hash(v)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	for _, plugin := range plugins.Plugins() {
		t.Run(plugin.Name(), func(t *testing.T) {
			b := newBackend(t, plugin)
			defer b.Close()

			h, err := b.Store(v)

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if string(h) != string(expected) {
				t.Fatalf("expected handle %x, got %x", expected, h)
			}
		})
	}
}

func TestBackendErrors(t *testing.T) {
	for _, plugin := range plugins.Plugins() {
		t.Run(plugin.Name(), func(t *testing.T) {
			b := newBackend(t, plugin)

			if _, err := b.Retrieve(backend.Handle("short")); !errors.Is(err, backend.ErrInvalidHandle) {
				t.Fatalf("expected ErrInvalidHandle, got %#v", err)
			}

			if _, err := b.Retrieve(make(backend.Handle, 32)); !errors.Is(err, backend.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %#v", err)
			}

			if err := b.Close(); err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if _, err := b.Store(value.Int(1)); !errors.Is(err, backend.ErrClosed) {
				t.Fatalf("expected ErrClosed, got %#v", err)
			}
		})
	}
}
