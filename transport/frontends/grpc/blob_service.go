package grpc

import (
	"context"
	"errors"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/transport"
	"github.com/jrife/stashbench/transport/blobpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ blobpb.BlobStoreServer = (*BlobStoreServer)(nil)

// BlobStoreServer implements the gRPC
// server's BlobStore service. It mostly
// forwards requests on to the blob server.
type BlobStoreServer struct {
	blobServer transport.BlobServer
	logger     *zap.Logger
}

func (blobStoreServer *BlobStoreServer) Put(ctx context.Context, request *blobpb.PutRequest) (*blobpb.PutResponse, error) {
	key, err := blob.KeyFromBytes(request.Key)

	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := blobStoreServer.blobServer.Put(ctx, key, request.Data); err != nil {
		return nil, blobStoreServer.statusError(err)
	}

	return &blobpb.PutResponse{}, nil
}

func (blobStoreServer *BlobStoreServer) Get(ctx context.Context, request *blobpb.GetRequest) (*blobpb.GetResponse, error) {
	key, err := blob.KeyFromBytes(request.Key)

	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	data, err := blobStoreServer.blobServer.Get(ctx, key)

	if err != nil {
		return nil, blobStoreServer.statusError(err)
	}

	return &blobpb.GetResponse{Data: data}, nil
}

func (blobStoreServer *BlobStoreServer) statusError(err error) error {
	switch {
	case errors.Is(err, blob.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, blob.ErrCollision):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, blob.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	blobStoreServer.logger.Error("blob server error", zap.Error(err))

	return status.Errorf(codes.Internal, "unable to serve request: %s", err.Error())
}
