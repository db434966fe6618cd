package blobpb

import (
	"github.com/jrife/stashbench/codec"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of the CBOR codec
const CodecName = "cbor"

func init() {
	encoding.RegisterCodec(Codec{})
}

var _ encoding.Codec = Codec{}

// Codec marshals gRPC messages as deterministic CBOR
type Codec struct {
}

// Marshal implements encoding.Codec.Marshal
func (Codec) Marshal(v interface{}) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal implements encoding.Codec.Unmarshal
func (Codec) Unmarshal(data []byte, v interface{}) error {
	return codec.Unmarshal(data, v)
}

// Name implements encoding.Codec.Name
func (Codec) Name() string {
	return CodecName
}
