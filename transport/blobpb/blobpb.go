// Package blobpb defines the messages and the gRPC
// service description of the blob store service.
// Messages travel as CBOR rather than protobuf.
package blobpb

import (
	"context"

	"google.golang.org/grpc"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "stashbench.BlobStore"
	// MaxMessageSize bounds request and response size on
	// both ends. gRPC's own default is 4MiB.
	MaxMessageSize = 1 << 30

	putMethod = "/" + ServiceName + "/Put"
	getMethod = "/" + ServiceName + "/Get"
)

// PutRequest asks the server to store Data under Key
type PutRequest struct {
	Key  []byte `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint"`
}

// PutResponse acknowledges a PutRequest
type PutResponse struct {
}

// GetRequest asks the server for the data stored under Key
type GetRequest struct {
	Key []byte `cbor:"1,keyasint"`
}

// GetResponse carries the requested data
type GetResponse struct {
	Data []byte `cbor:"1,keyasint"`
}

// BlobStoreServer is the server API for the BlobStore service
type BlobStoreServer interface {
	Put(context.Context, *PutRequest) (*PutResponse, error)
	Get(context.Context, *GetRequest) (*GetResponse, error)
}

// BlobStoreClient is the client API for the BlobStore service
type BlobStoreClient interface {
	Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error)
	Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
}

type blobStoreClient struct {
	cc grpc.ClientConnInterface
}

// NewBlobStoreClient creates a client for the BlobStore service.
// The connection must have been dialed with the CBOR codec forced.
func NewBlobStoreClient(cc grpc.ClientConnInterface) BlobStoreClient {
	return &blobStoreClient{cc: cc}
}

func (c *blobStoreClient) Put(ctx context.Context, in *PutRequest, opts ...grpc.CallOption) (*PutResponse, error) {
	out := new(PutResponse)

	if err := c.cc.Invoke(ctx, putMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *blobStoreClient) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	out := new(GetResponse)

	if err := c.cc.Invoke(ctx, getMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// RegisterBlobStoreServer registers srv with s
func RegisterBlobStoreServer(s grpc.ServiceRegistrar, srv BlobStoreServer) {
	s.RegisterService(&BlobStoreServiceDesc, srv)
}

func putHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutRequest)

	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(BlobStoreServer).Put(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: putMethod,
	}

	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlobStoreServer).Put(ctx, req.(*PutRequest))
	})
}

func getHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetRequest)

	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(BlobStoreServer).Get(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getMethod,
	}

	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlobStoreServer).Get(ctx, req.(*GetRequest))
	})
}

// BlobStoreServiceDesc is the grpc.ServiceDesc for the BlobStore service
var BlobStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BlobStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Put",
			Handler:    putHandler,
		},
		{
			MethodName: "Get",
			Handler:    getHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blobpb",
}
