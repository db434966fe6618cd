package backend

import (
	"fmt"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/stash"
	"github.com/jrife/stashbench/value"
	"go.uber.org/zap"
)

// StashBackendConfig contains configuration
// options for a stash backend
type StashBackendConfig struct {
	Name string
	// Store holds the blobs. The backend owns it:
	// closing the backend closes the store.
	Store blob.Store
	// KeyGenerator derives blob keys. DefaultKeyGenerator
	// is used if it is nil.
	KeyGenerator blob.KeyGenerator
	Logger       *zap.Logger
}

var _ Backend = (*StashBackend)(nil)

// StashBackend serializes values into a blob store
// with the stash serializer
type StashBackend struct {
	name    string
	store   blob.Store
	mapping blob.Mapping
	logger  *zap.Logger
}

// NewStashBackend creates a stash backend over config.Store
func NewStashBackend(config StashBackendConfig) *StashBackend {
	logger := config.Logger

	if logger == nil {
		logger = zap.L()
	}

	return &StashBackend{
		name:    config.Name,
		store:   config.Store,
		mapping: blob.NewMapping(config.Store, config.KeyGenerator),
		logger:  logger.With(zap.String("backend", config.Name)),
	}
}

// Name implements Backend.Name
func (backend *StashBackend) Name() string {
	return backend.name
}

// Store implements Backend.Store. Stores that buffer
// writes are flushed before Store returns.
func (backend *StashBackend) Store(v value.Value) (Handle, error) {
	key, err := stash.Serialize(v, backend.mapping)

	if err != nil {
		return nil, wrapError("could not serialize value", err)
	}

	if flusher, ok := backend.store.(blob.Flusher); ok {
		if err := flusher.Flush(); err != nil {
			return nil, wrapError("could not flush store", err)
		}
	}

	backend.logger.Debug("stored value", zap.Stringer("key", key))

	return Handle(key[:]), nil
}

// Retrieve implements Backend.Retrieve
func (backend *StashBackend) Retrieve(h Handle) (value.Value, error) {
	key, err := blob.KeyFromBytes(h)

	if err != nil {
		return nil, wrapError("could not parse handle", fmt.Errorf("%w: %w", ErrInvalidHandle, err))
	}

	v, err := stash.Deserialize(key, backend.mapping)

	if err != nil {
		return nil, wrapError("could not deserialize value", err)
	}

	return v, nil
}

// Close implements Backend.Close
func (backend *StashBackend) Close() error {
	return wrapError("could not close store", backend.store.Close())
}

var _ Hasher = (*StashHasher)(nil)

// StashHasher computes the root key stash would store a
// value under without storing anything
type StashHasher struct {
	name    string
	mapping blob.Mapping
}

// NewStashHasher creates a hasher. If keyGenerator is
// nil DefaultKeyGenerator is used.
func NewStashHasher(name string, keyGenerator blob.KeyGenerator) *StashHasher {
	return &StashHasher{name: name, mapping: blob.NewDiscardMapping(keyGenerator)}
}

// Name implements Hasher.Name
func (hasher *StashHasher) Name() string {
	return hasher.name
}

// Hash implements Hasher.Hash
func (hasher *StashHasher) Hash(v value.Value) (Handle, error) {
	key, err := stash.Serialize(v, hasher.mapping)

	if err != nil {
		return nil, wrapError("could not hash value", err)
	}

	return Handle(key[:]), nil
}

var _ Plugin = (*StashPlugin)(nil)

// StashPlugin makes stash backends over the
// stores of a blob plugin
type StashPlugin struct {
	blobPlugin blob.Plugin
}

// NewStashPlugin adapts a blob plugin into a backend plugin
func NewStashPlugin(blobPlugin blob.Plugin) *StashPlugin {
	return &StashPlugin{blobPlugin: blobPlugin}
}

// Name implements Plugin.Name
func (plugin *StashPlugin) Name() string {
	return plugin.blobPlugin.Name()
}

// NewBackend implements Plugin.NewBackend
func (plugin *StashPlugin) NewBackend(options Options) (Backend, error) {
	store, err := plugin.blobPlugin.NewStore(blob.PluginOptions{
		"path":   options.Path,
		"logger": options.Logger,
	})

	if err != nil {
		return nil, wrapError(fmt.Sprintf("could not create %s store", plugin.Name()), err)
	}

	return NewStashBackend(StashBackendConfig{
		Name:   plugin.Name(),
		Store:  store,
		Logger: options.Logger,
	}), nil
}
