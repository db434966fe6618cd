package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
	"github.com/jrife/stashbench/transport"
	"github.com/jrife/stashbench/transport/clients"
	"github.com/jrife/stashbench/transport/frontends"
	grpc_frontend "github.com/jrife/stashbench/transport/frontends/grpc"
	"github.com/jrife/stashbench/utils/uuid"
	"go.uber.org/zap"
)

const (
	DriverName = "remote"
	// SocketName is the name of the unix socket the
	// server listens on inside the store directory
	SocketName = "blob.sock"
	// maxSocketPath stays under the smallest sun_path
	// limit (104 bytes on BSD and macOS)
	maxSocketPath = 100
)

func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&RemotePlugin{},
	}
}

type RemotePlugin struct {
}

func (plugin *RemotePlugin) Name() string {
	return DriverName
}

func (plugin *RemotePlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	var config RemoteStoreConfig

	path, err := options.Path()

	if err != nil {
		return nil, err
	}

	config.Path = path

	if logger, ok := options["logger"].(*zap.Logger); ok {
		config.Logger = logger
	}

	store, err := New(config)

	if err != nil {
		return nil, err
	}

	return store, nil
}

func (plugin *RemotePlugin) NewTempStore() (blob.Store, error) {
	// Unix socket paths are short, so avoid long temp dirs
	return plugin.NewStore(blob.PluginOptions{
		"path": filepath.Join(os.TempDir(), "remote-"+uuid.MustUUID()[:8]),
	})
}

type RemoteStoreConfig struct {
	// Path is the store directory. The server
	// socket is created inside it.
	Path   string
	Logger *zap.Logger
}

var _ blob.Store = (*RemoteStore)(nil)

// RemoteStore ships blobs over gRPC to a server it runs
// in-process. The server keeps them in memory.
type RemoteStore struct {
	path     string
	socket   string
	logger   *zap.Logger
	backing  *ram.RAMStore
	frontend *grpc_frontend.Frontend
	client   clients.BlobStoreClient
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closed   bool
}

// New starts the server on a unix socket inside
// config.Path and connects a client to it
func New(config RemoteStoreConfig) (*RemoteStore, error) {
	logger := config.Logger

	if logger == nil {
		logger = zap.L()
	}

	logger = logger.With(zap.String("driver", DriverName))

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("could not create remote store directory %s: %w", config.Path, err)
	}

	socket := filepath.Join(config.Path, SocketName)

	if len(socket) > maxSocketPath {
		socket = filepath.Join(os.TempDir(), "stashbench-"+uuid.MustUUID()[:8]+".sock")
		logger.Debug("store path too long for a unix socket, using temp dir", zap.String("socket", socket))
	}

	listener, err := net.Listen("unix", socket)

	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", socket, err)
	}

	backing := ram.New()
	frontend := &grpc_frontend.Frontend{}

	if err := frontend.Init(frontends.Options{
		Server: &transport.BucketServer{Bucket: backing},
		Logger: logger,
	}); err != nil {
		listener.Close()

		return nil, fmt.Errorf("could not initialize frontend: %w", err)
	}

	client, err := clients.DialGRPC("unix://" + socket)

	if err != nil {
		listener.Close()

		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	store := &RemoteStore{
		path:     config.Path,
		socket:   socket,
		logger:   logger,
		backing:  backing,
		frontend: frontend,
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
	}

	store.wg.Add(1)

	go func() {
		defer store.wg.Done()

		if err := frontend.Listen(listener); err != nil {
			logger.Error("frontend stopped", zap.Error(err))
		}
	}()

	return store, nil
}

// Socket returns the path of the server's unix socket. It is
// inside the store directory unless that would make it too long.
func (store *RemoteStore) Socket() string {
	return store.socket
}

func (store *RemoteStore) Put(key blob.Key, data []byte) error {
	if store.closed {
		return blob.ErrClosed
	}

	return store.client.Put(store.ctx, key, data)
}

func (store *RemoteStore) Get(key blob.Key) ([]byte, error) {
	if store.closed {
		return nil, blob.ErrClosed
	}

	return store.client.Get(store.ctx, key)
}

// Close disconnects the client and stops the server. It
// does not return until the server goroutine has exited.
func (store *RemoteStore) Close() error {
	if store.closed {
		return nil
	}

	store.closed = true
	store.cancel()

	var errs []error

	if err := store.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("could not close client: %w", err))
	}

	if err := store.frontend.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("could not stop frontend: %w", err))
	}

	store.wg.Wait()

	if err := os.Remove(store.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("could not remove socket: %w", err))
	}

	if err := store.backing.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (store *RemoteStore) Delete() error {
	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	if err := os.RemoveAll(store.path); err != nil {
		return fmt.Errorf("could not remove path %s: %w", store.path, err)
	}

	return nil
}
