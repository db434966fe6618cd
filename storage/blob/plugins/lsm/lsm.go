package lsm

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/utils/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	DriverName = "lsm"
)

// flushMarker is shorter than any blob key so it
// never shadows a blob
var flushMarker = []byte("stashbench.flush")

func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&LSMPlugin{},
	}
}

type LSMPlugin struct {
}

func (plugin *LSMPlugin) Name() string {
	return DriverName
}

func (plugin *LSMPlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	path, err := options.Path()

	if err != nil {
		return nil, err
	}

	store, err := New(LSMStoreConfig{Path: path})

	if err != nil {
		return nil, err
	}

	return store, nil
}

func (plugin *LSMPlugin) NewTempStore() (blob.Store, error) {
	return plugin.NewStore(blob.PluginOptions{
		"path": uuid.TempPath("lsm"),
	})
}

type LSMStoreConfig struct {
	Path string
}

var _ blob.Store = (*LSMStore)(nil)
var _ blob.Flusher = (*LSMStore)(nil)

// LSMStore keeps blobs in a LevelDB log-structured merge tree
type LSMStore struct {
	db   *leveldb.DB
	path string
}

func New(config LSMStoreConfig) (*LSMStore, error) {
	db, err := leveldb.OpenFile(config.Path, &opt.Options{
		// Blobs are content addressed and already dense
		Compression: opt.NoCompression,
	})

	if err != nil {
		return nil, fmt.Errorf("could not open lsm store at %s: %w", config.Path, err)
	}

	return &LSMStore{db: db, path: config.Path}, nil
}

func (store *LSMStore) Put(key blob.Key, data []byte) error {
	if err := store.db.Put(key[:], data, nil); err != nil {
		return store.wrapError(fmt.Sprintf("could not put blob %s", key), err)
	}

	return nil
}

func (store *LSMStore) Get(key blob.Key) ([]byte, error) {
	data, err := store.db.Get(key[:], nil)

	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", key, blob.ErrNotFound)
	} else if err != nil {
		return nil, store.wrapError(fmt.Sprintf("could not get blob %s", key), err)
	}

	return data, nil
}

// Flush makes every blob put so far durable with one synced
// write to the journal. leveldb has no public way to flush just
// the memtable and CompactRange rewrites the whole tree.
func (store *LSMStore) Flush() error {
	if err := store.db.Put(flushMarker, nil, &opt.WriteOptions{Sync: true}); err != nil {
		return store.wrapError("could not sync journal", err)
	}

	return nil
}

func (store *LSMStore) wrapError(wrap string, err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return blob.ErrClosed
	}

	return fmt.Errorf("%s: %w", wrap, err)
}

func (store *LSMStore) Close() error {
	err := store.db.Close()

	if errors.Is(err, leveldb.ErrClosed) {
		return nil
	}

	return err
}

func (store *LSMStore) Delete() error {
	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	if err := os.RemoveAll(store.path); err != nil {
		return fmt.Errorf("could not remove path %s: %w", store.path, err)
	}

	return nil
}
