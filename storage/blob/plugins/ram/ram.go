package ram

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/jrife/stashbench/storage/blob"
)

const (
	DriverName = "ram"
	// DefaultShards is the number of shards a store
	// has unless the "shards" option says otherwise
	DefaultShards = 16
)

func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&RAMPlugin{},
	}
}

type RAMPlugin struct {
}

func (plugin *RAMPlugin) Name() string {
	return DriverName
}

// NewStore creates an empty store. The optional "shards"
// option sets the number of shards.
func (plugin *RAMPlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	shards := DefaultShards

	if raw, ok := options["shards"]; ok {
		n, ok := raw.(int)

		if !ok || n < 1 {
			return nil, fmt.Errorf("\"shards\" must be a positive int")
		}

		shards = n
	}

	return NewSharded(shards), nil
}

func (plugin *RAMPlugin) NewTempStore() (blob.Store, error) {
	return plugin.NewStore(blob.PluginOptions{})
}

type shard struct {
	mu    sync.RWMutex
	blobs map[blob.Key][]byte
}

var _ blob.Store = (*RAMStore)(nil)

// RAMStore keeps blobs in Go maps spread over shards
// picked by the xxhash of the key. It is safe for
// concurrent use.
type RAMStore struct {
	shards []*shard
	closed atomic.Bool
}

// New creates an empty RAMStore with DefaultShards shards
func New() *RAMStore {
	return NewSharded(DefaultShards)
}

// NewSharded creates an empty RAMStore with n shards.
// n is raised to 1 if it is smaller.
func NewSharded(n int) *RAMStore {
	if n < 1 {
		n = 1
	}

	store := &RAMStore{shards: make([]*shard, n)}

	for i := range store.shards {
		store.shards[i] = &shard{blobs: map[blob.Key][]byte{}}
	}

	return store
}

func (store *RAMStore) shard(key blob.Key) *shard {
	if len(store.shards) == 1 {
		return store.shards[0]
	}

	return store.shards[xxhash.Sum64(key[:])%uint64(len(store.shards))]
}

func (store *RAMStore) Put(key blob.Key, data []byte) error {
	if store.closed.Load() {
		return blob.ErrClosed
	}

	shard := store.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.blobs[key] = append([]byte(nil), data...)

	return nil
}

func (store *RAMStore) Get(key blob.Key) ([]byte, error) {
	if store.closed.Load() {
		return nil, blob.ErrClosed
	}

	shard := store.shard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	data, ok := shard.blobs[key]

	if !ok {
		return nil, fmt.Errorf("%s: %w", key, blob.ErrNotFound)
	}

	return data, nil
}

// Len returns the number of blobs in the store
func (store *RAMStore) Len() int {
	n := 0

	for _, shard := range store.shards {
		shard.mu.RLock()
		n += len(shard.blobs)
		shard.mu.RUnlock()
	}

	return n
}

func (store *RAMStore) Close() error {
	store.closed.Store(true)

	return nil
}

func (store *RAMStore) Delete() error {
	store.closed.Store(true)

	for _, shard := range store.shards {
		shard.mu.Lock()
		shard.blobs = map[blob.Key][]byte{}
		shard.mu.Unlock()
	}

	return nil
}
