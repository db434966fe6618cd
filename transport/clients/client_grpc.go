package clients

import (
	"context"
	"fmt"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/transport/blobpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

var _ BlobStoreClient = (*GRPCBlobClient)(nil)

// GRPCBlobClient talks to a blob server through
// its gRPC frontend
type GRPCBlobClient struct {
	conn   *grpc.ClientConn
	client blobpb.BlobStoreClient
}

// DialGRPC connects to a blob server's gRPC frontend at target.
// Unix sockets are addressed as "unix:///path/to/socket".
func DialGRPC(target string) (*GRPCBlobClient, error) {
	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(blobpb.Codec{}),
			grpc.MaxCallRecvMsgSize(blobpb.MaxMessageSize),
			grpc.MaxCallSendMsgSize(blobpb.MaxMessageSize),
		),
	)

	if err != nil {
		return nil, fmt.Errorf("could not create client for %s: %w", target, err)
	}

	return &GRPCBlobClient{conn: conn, client: blobpb.NewBlobStoreClient(conn)}, nil
}

// Put implements BlobStoreClient.Put
func (client *GRPCBlobClient) Put(ctx context.Context, key blob.Key, data []byte) error {
	if _, err := client.client.Put(ctx, &blobpb.PutRequest{Key: key[:], Data: data}); err != nil {
		return fromStatus(err, fmt.Sprintf("could not put blob %s", key))
	}

	return nil
}

// Get implements BlobStoreClient.Get
func (client *GRPCBlobClient) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	response, err := client.client.Get(ctx, &blobpb.GetRequest{Key: key[:]})

	if err != nil {
		return nil, fromStatus(err, fmt.Sprintf("could not get blob %s", key))
	}

	return response.Data, nil
}

// Close closes the underlying connection
func (client *GRPCBlobClient) Close() error {
	return client.conn.Close()
}

// fromStatus maps gRPC status codes back onto blob errors
func fromStatus(err error, wrap string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", wrap, blob.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", wrap, blob.ErrCollision)
	case codes.Unavailable:
		return fmt.Errorf("%s: %w", wrap, blob.ErrClosed)
	}

	return fmt.Errorf("%s: %w", wrap, err)
}
