package blob

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no blob is stored under the key
	ErrNotFound = errors.New("blob not found")
	// ErrCollision indicates that two different blobs produced the same key
	ErrCollision = errors.New("key collision")
	// ErrClosed indicates that the store was closed
	ErrClosed = errors.New("store was closed")
)

// PluginOptions are driver-specific options
// passed to Plugin.NewStore
type PluginOptions map[string]interface{}

// Path returns the "path" option
func (options PluginOptions) Path() (string, error) {
	path, ok := options["path"]

	if !ok {
		return "", fmt.Errorf("\"path\" is required")
	}

	pathString, ok := path.(string)

	if !ok {
		return "", fmt.Errorf("\"path\" must be a string")
	}

	return pathString, nil
}

// Plugin represents a blob storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewStore returns an instance of the plugin store
	NewStore(options PluginOptions) (Store, error)
	// NewTempStore returns an instance of the plugin store
	// initialized with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// store without knowing how to initialize it
	NewTempStore() (Store, error)
}

// Bucket is a flat keyed collection of blobs
type Bucket interface {
	// Put stores data under key, replacing whatever was
	// stored there. Implementations must not retain data
	// after Put returns unless they copy it.
	Put(key Key, data []byte) error
	// Get returns the blob stored under key or ErrNotFound.
	// Callers must not modify the returned slice.
	Get(key Key) ([]byte, error)
}

// Store is a bucket backed by some storage medium
type Store interface {
	Bucket
	// Close closes the store. Calls to Put or Get made
	// after Close returns must return ErrClosed.
	Close() error
	// Delete closes then deletes this store and all its contents.
	Delete() error
}

// Mapping is a content-addressed blob collection. The
// key for a blob is a pure function of its contents.
type Mapping interface {
	// PutBlob stores b and returns its key. Storing the same
	// bytes twice yields the same key. It returns ErrCollision
	// if different bytes are already stored under that key.
	PutBlob(b []byte) (Key, error)
	// GetBlob returns the blob stored under key or ErrNotFound
	GetBlob(key Key) ([]byte, error)
}

// Flusher is implemented by stores that buffer writes.
// Flush makes every completed Put durable.
type Flusher interface {
	Flush() error
}
