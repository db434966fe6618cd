package clients

import (
	"context"

	"github.com/jrife/stashbench/storage/blob"
)

// BlobStoreClient describes the interface
// for clients of a blob server. It mirrors
// transport.BlobServer so a client can stand
// in wherever a server is expected.
type BlobStoreClient interface {
	Put(ctx context.Context, key blob.Key, data []byte) error
	Get(ctx context.Context, key blob.Key) ([]byte, error)
	Close() error
}
