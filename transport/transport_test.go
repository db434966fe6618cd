package transport_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
	"github.com/jrife/stashbench/transport"
	"github.com/jrife/stashbench/transport/clients"
	"github.com/jrife/stashbench/transport/frontends"
	grpc_frontend "github.com/jrife/stashbench/transport/frontends/grpc"
	"go.uber.org/zap"
)

type Protocol struct {
	Frontend func() frontends.BlobFrontend
	Dial     func(socket string) (clients.BlobStoreClient, error)
}

var protocols = map[string]Protocol{
	"grpc": {
		Frontend: func() frontends.BlobFrontend { return &grpc_frontend.Frontend{} },
		Dial: func(socket string) (clients.BlobStoreClient, error) {
			return clients.DialGRPC("unix://" + socket)
		},
	},
}

// failingBucket fails every call with err
type failingBucket struct {
	err error
}

func (bucket failingBucket) Put(key blob.Key, data []byte) error {
	return bucket.err
}

func (bucket failingBucket) Get(key blob.Key) ([]byte, error) {
	return nil, bucket.err
}

func serve(t *testing.T, protocol Protocol, bucket blob.Bucket) clients.BlobStoreClient {
	socket := filepath.Join(t.TempDir(), "blob.sock")
	listener, err := net.Listen("unix", socket)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	frontend := protocol.Frontend()

	if err := frontend.Init(frontends.Options{Server: &transport.BucketServer{Bucket: bucket}, Logger: zap.NewNop()}); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := frontend.Listen(listener); err != nil {
			t.Errorf("expected err to be nil, got %#v", err)
		}
	}()

	client, err := protocol.Dial(socket)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	t.Cleanup(func() {
		client.Close()
		frontend.Stop()
		wg.Wait()
	})

	return client
}

// These tests check compliance with common requirements
// for different client-frontend implementations such as
// error codes and data integrity.
func TestTransports(t *testing.T) {
	for name, protocol := range protocols {
		t.Run(name, func(t *testing.T) {
			t.Run("put-get", func(t *testing.T) {
				client := serve(t, protocol, ram.New())
				key := blob.DefaultKeyGenerator.Digest([]byte("abc"))

				if err := client.Put(context.Background(), key, []byte("abc")); err != nil {
					t.Fatalf("expected err to be nil, got %#v", err)
				}

				data, err := client.Get(context.Background(), key)

				if err != nil {
					t.Fatalf("expected err to be nil, got %#v", err)
				}

				if !bytes.Equal(data, []byte("abc")) {
					t.Fatalf("expected abc, got %q", data)
				}
			})

			t.Run("empty-blob", func(t *testing.T) {
				client := serve(t, protocol, ram.New())
				key := blob.DefaultKeyGenerator.Digest(nil)

				if err := client.Put(context.Background(), key, []byte{}); err != nil {
					t.Fatalf("expected err to be nil, got %#v", err)
				}

				data, err := client.Get(context.Background(), key)

				if err != nil {
					t.Fatalf("expected err to be nil, got %#v", err)
				}

				if len(data) != 0 {
					t.Fatalf("expected an empty blob, got %q", data)
				}
			})

			testCases := map[string]struct {
				err      error
				expected error
			}{
				"not-found": {err: blob.ErrNotFound, expected: blob.ErrNotFound},
				"collision": {err: blob.ErrCollision, expected: blob.ErrCollision},
				"closed":    {err: blob.ErrClosed, expected: blob.ErrClosed},
			}

			for name, testCase := range testCases {
				t.Run(name, func(t *testing.T) {
					client := serve(t, protocol, failingBucket{err: testCase.err})

					if err := client.Put(context.Background(), blob.Key{}, []byte("x")); !errors.Is(err, testCase.expected) {
						t.Fatalf("expected %#v from put, got %#v", testCase.expected, err)
					}

					if _, err := client.Get(context.Background(), blob.Key{}); !errors.Is(err, testCase.expected) {
						t.Fatalf("expected %#v from get, got %#v", testCase.expected, err)
					}
				})
			}

			t.Run("internal", func(t *testing.T) {
				client := serve(t, protocol, failingBucket{err: errors.New("disk on fire")})

				_, err := client.Get(context.Background(), blob.Key{})

				if err == nil || errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrClosed) {
					t.Fatalf("expected an unmapped error, got %#v", err)
				}
			})

			t.Run("canceled", func(t *testing.T) {
				client := serve(t, protocol, ram.New())
				ctx, cancel := context.WithCancel(context.Background())
				cancel()

				if _, err := client.Get(ctx, blob.Key{}); err == nil {
					t.Fatalf("expected an error")
				}
			})
		})
	}
}
