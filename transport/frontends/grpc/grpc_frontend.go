package grpc

import (
	"errors"
	"fmt"
	"net"

	"github.com/jrife/stashbench/transport/blobpb"
	"github.com/jrife/stashbench/transport/frontends"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var _ frontends.BlobFrontend = (*Frontend)(nil)

// Frontend is an implementation of
// BlobFrontend for the gRPC protocol
type Frontend struct {
	grpcServer *grpc.Server
	logger     *zap.Logger
}

// Init initializes the frontend
func (frontend *Frontend) Init(options frontends.Options) error {
	if options.Server == nil {
		return fmt.Errorf("a blob server is required")
	}

	frontend.logger = options.Logger

	if frontend.logger == nil {
		frontend.logger = zap.L()
	}

	frontend.grpcServer = grpc.NewServer(
		grpc.MaxRecvMsgSize(blobpb.MaxMessageSize),
		grpc.MaxSendMsgSize(blobpb.MaxMessageSize),
	)

	blobpb.RegisterBlobStoreServer(frontend.grpcServer, &BlobStoreServer{blobServer: options.Server, logger: frontend.logger})

	return nil
}

// Listen accepts connections from this listener
func (frontend *Frontend) Listen(listener net.Listener) error {
	frontend.logger.Debug("listening", zap.String("address", listener.Addr().String()))

	err := frontend.grpcServer.Serve(listener)

	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}

	return err
}

// Stop stops accepting connections from listeners and causes
// all calls to Listen to return
func (frontend *Frontend) Stop() error {
	frontend.grpcServer.Stop()

	return nil
}
