package fsdb

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/utils/uuid"
	"github.com/natefinch/atomic"
)

const (
	DriverName = "fsdb"
)

func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&FsDBPlugin{},
	}
}

type FsDBPlugin struct {
}

func (plugin *FsDBPlugin) Name() string {
	return DriverName
}

func (plugin *FsDBPlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	path, err := options.Path()

	if err != nil {
		return nil, err
	}

	store, err := New(FsDBStoreConfig{Path: path})

	if err != nil {
		return nil, err
	}

	return store, nil
}

func (plugin *FsDBPlugin) NewTempStore() (blob.Store, error) {
	return plugin.NewStore(blob.PluginOptions{
		"path": uuid.TempPath("fsdb"),
	})
}

type FsDBStoreConfig struct {
	Path string
}

var _ blob.Store = (*FsDBStore)(nil)

// FsDBStore keeps one file per blob. A blob whose key is
// k lives at <root>/<hex k[0]>/<hex k[1:]>.
type FsDBStore struct {
	root   string
	closed bool
}

func New(config FsDBStoreConfig) (*FsDBStore, error) {
	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("could not create fsdb root %s: %w", config.Path, err)
	}

	return &FsDBStore{root: config.Path}, nil
}

// Path returns the file that holds the blob stored under key
func (store *FsDBStore) Path(key blob.Key) string {
	return filepath.Join(store.root, hex.EncodeToString(key[:1]), hex.EncodeToString(key[1:]))
}

// Put writes the blob file unless an identical one already exists.
// An existing file with different contents is a collision.
func (store *FsDBStore) Put(key blob.Key, data []byte) error {
	if store.closed {
		return blob.ErrClosed
	}

	path := store.Path(key)
	existing, err := os.ReadFile(path)

	if err == nil {
		if !bytes.Equal(existing, data) {
			return fmt.Errorf("%s: %w", key, blob.ErrCollision)
		}

		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", filepath.Dir(path), err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	return nil
}

func (store *FsDBStore) Get(key blob.Key) ([]byte, error) {
	if store.closed {
		return nil, blob.ErrClosed
	}

	data, err := os.ReadFile(store.Path(key))

	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, blob.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("could not read blob %s: %w", key, err)
	}

	return data, nil
}

func (store *FsDBStore) Close() error {
	store.closed = true

	return nil
}

func (store *FsDBStore) Delete() error {
	store.closed = true

	if err := os.RemoveAll(store.root); err != nil {
		return fmt.Errorf("could not remove path %s: %w", store.root, err)
	}

	return nil
}
