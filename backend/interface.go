// Package backend describes the storage backends the
// benchmark driver exercises and adapts blob stores
// into them through the stash serializer.
package backend

import (
	"github.com/jrife/stashbench/value"
	"go.uber.org/zap"
)

// Handle is an opaque reference to a stored value. The
// benchmark driver never inspects it.
type Handle []byte

// Backend persists test values and reads them back
type Backend interface {
	// Name returns the backend name shown in reports
	Name() string
	// Store persists v and returns a handle that
	// Retrieve accepts
	Store(v value.Value) (Handle, error)
	// Retrieve returns the value stored under h
	Retrieve(h Handle) (value.Value, error)
	// Close releases any resources held by the backend.
	// Calls made after Close returns must return ErrClosed.
	Close() error
}

// Hasher is a one-way backend. It produces a
// handle but keeps nothing to retrieve.
type Hasher interface {
	Name() string
	Hash(v value.Value) (Handle, error)
}

// Options are passed to Plugin.NewBackend
type Options struct {
	// Path is a directory private to the backend.
	// It may not exist yet.
	Path   string
	Logger *zap.Logger
}

// Plugin is a factory for backends
type Plugin interface {
	Name() string
	NewBackend(options Options) (Backend, error)
}
