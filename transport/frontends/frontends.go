package frontends

import (
	"net"

	"github.com/jrife/stashbench/transport"
	"go.uber.org/zap"
)

// Options define standard options
// passed to frontends during initialization
type Options struct {
	Server transport.BlobServer
	Logger *zap.Logger
}

// BlobFrontend describes an interface
// that every blob frontend must
// implement.
type BlobFrontend interface {
	// Init initializes the frontend. Use this
	// to pass configuration options to the frontend
	Init(options Options) error
	// Listen tells this frontend to start listening
	// using this listener. It must accept one or more
	// calls to Listen. Listen must block as long as it
	// is actively accepting connections from this
	// listener. If the listener returns an error Listen
	// must return an error and return. If Listen returns
	// as a result of Stop being called it must return nil.
	Listen(listener net.Listener) error
	// Stop tells this frontend to stop processing all
	// requests and stop listening to all listeners.
	Stop() error
}
