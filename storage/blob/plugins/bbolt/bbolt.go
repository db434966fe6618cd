package bbolt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/utils/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	DriverName = "bbolt"
	// FileName is the name of the database file
	// inside the store directory
	FileName = "blobs.db"
)

var bucketName = []byte("blobs")

func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&BBoltPlugin{},
	}
}

type BBoltPlugin struct {
}

func (plugin *BBoltPlugin) Name() string {
	return DriverName
}

func (plugin *BBoltPlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	var config BBoltStoreConfig

	path, err := options.Path()

	if err != nil {
		return nil, err
	}

	config.Path = path

	if noSync, ok := options["no_sync"].(bool); ok {
		config.NoSync = noSync
	} else {
		config.NoSync = true
	}

	store, err := New(config)

	if err != nil {
		return nil, err
	}

	return store, nil
}

func (plugin *BBoltPlugin) NewTempStore() (blob.Store, error) {
	return plugin.NewStore(blob.PluginOptions{
		"path": uuid.TempPath("bbolt"),
	})
}

type BBoltStoreConfig struct {
	// Path is the store directory
	Path string
	// NoSync skips the fsync at the end of every
	// write transaction. Flush syncs explicitly.
	NoSync bool
}

var _ blob.Store = (*BBoltStore)(nil)
var _ blob.Flusher = (*BBoltStore)(nil)

// BBoltStore keeps blobs in a single bbolt bucket
type BBoltStore struct {
	db   *bolt.DB
	path string
}

func New(config BBoltStoreConfig) (*BBoltStore, error) {
	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("could not create bbolt directory %s: %w", config.Path, err)
	}

	db, err := bolt.Open(filepath.Join(config.Path, FileName), 0666, nil)

	if err != nil {
		return nil, fmt.Errorf("could not open bbolt store at %s: %w", config.Path, err)
	}

	db.NoSync = config.NoSync

	if err := db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists(bucketName)

		return err
	}); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not ensure blob bucket exists: %w", err)
	}

	return &BBoltStore{db: db, path: config.Path}, nil
}

func (store *BBoltStore) Put(key blob.Key, data []byte) error {
	err := store.db.Update(func(txn *bolt.Tx) error {
		return txn.Bucket(bucketName).Put(key[:], data)
	})

	if err == bolt.ErrDatabaseNotOpen {
		return blob.ErrClosed
	} else if err != nil {
		return fmt.Errorf("could not put blob %s: %w", key, err)
	}

	return nil
}

func (store *BBoltStore) Get(key blob.Key) ([]byte, error) {
	var data []byte

	err := store.db.View(func(txn *bolt.Tx) error {
		// Values are only valid for the life of the transaction
		if v := txn.Bucket(bucketName).Get(key[:]); v != nil {
			data = append([]byte{}, v...)
		}

		return nil
	})

	if err == bolt.ErrDatabaseNotOpen {
		return nil, blob.ErrClosed
	} else if err != nil {
		return nil, fmt.Errorf("could not get blob %s: %w", key, err)
	}

	if data == nil {
		return nil, fmt.Errorf("%s: %w", key, blob.ErrNotFound)
	}

	return data, nil
}

func (store *BBoltStore) Flush() error {
	if err := store.db.Sync(); err != nil {
		return fmt.Errorf("could not sync bbolt store: %w", err)
	}

	return nil
}

func (store *BBoltStore) Close() error {
	return store.db.Close()
}

func (store *BBoltStore) Delete() error {
	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	if err := os.RemoveAll(store.path); err != nil {
		return fmt.Errorf("could not remove path %s: %w", store.path, err)
	}

	return nil
}
