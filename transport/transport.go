package transport

import (
	"context"

	"github.com/jrife/stashbench/storage/blob"
)

// BlobServer describes the interface
// that will be passed to each type of
// frontend. Each frontend provides support
// for a different type of protocol.
type BlobServer interface {
	// Put stores data under key
	Put(ctx context.Context, key blob.Key, data []byte) error
	// Get returns the data stored under key. It must
	// return an error wrapping blob.ErrNotFound if
	// nothing is stored there.
	Get(ctx context.Context, key blob.Key) ([]byte, error)
}

var _ BlobServer = (*BucketServer)(nil)

// BucketServer serves blobs out of a bucket
type BucketServer struct {
	Bucket blob.Bucket
}

// Put implements BlobServer.Put
func (server *BucketServer) Put(ctx context.Context, key blob.Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return server.Bucket.Put(key, data)
}

// Get implements BlobServer.Get
func (server *BucketServer) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return server.Bucket.Get(key)
}
