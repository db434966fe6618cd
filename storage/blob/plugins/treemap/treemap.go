package treemap

import (
	"bytes"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/jrife/stashbench/storage/blob"
)

const (
	DriverName = "treemap"
)

func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&TreeMapPlugin{},
	}
}

type TreeMapPlugin struct {
}

func (plugin *TreeMapPlugin) Name() string {
	return DriverName
}

func (plugin *TreeMapPlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	return New(), nil
}

func (plugin *TreeMapPlugin) NewTempStore() (blob.Store, error) {
	return plugin.NewStore(blob.PluginOptions{})
}

var _ blob.Store = (*TreeMapStore)(nil)

// TreeMapStore keeps blobs in a red-black tree ordered
// by key bytes. It is not safe for concurrent use.
type TreeMapStore struct {
	m      *treemap.Map
	closed bool
}

// New creates an empty TreeMapStore
func New() *TreeMapStore {
	return &TreeMapStore{m: treemap.NewWith(func(a, b interface{}) int {
		keyA := a.(blob.Key)
		keyB := b.(blob.Key)

		return bytes.Compare(keyA[:], keyB[:])
	})}
}

func (store *TreeMapStore) Put(key blob.Key, data []byte) error {
	if store.closed {
		return blob.ErrClosed
	}

	store.m.Put(key, append([]byte(nil), data...))

	return nil
}

func (store *TreeMapStore) Get(key blob.Key) ([]byte, error) {
	if store.closed {
		return nil, blob.ErrClosed
	}

	v, ok := store.m.Get(key)

	if !ok {
		return nil, fmt.Errorf("%s: %w", key, blob.ErrNotFound)
	}

	return v.([]byte), nil
}

// Keys returns every key in ascending order
func (store *TreeMapStore) Keys() []blob.Key {
	keys := make([]blob.Key, 0, store.m.Size())
	iter := store.m.Iterator()

	for iter.Next() {
		keys = append(keys, iter.Key().(blob.Key))
	}

	return keys
}

func (store *TreeMapStore) Close() error {
	store.closed = true

	return nil
}

func (store *TreeMapStore) Delete() error {
	store.closed = true
	store.m.Clear()

	return nil
}
