// Package transport contains descriptions of the
// services a blob server exposes and implementations
// of clients and servers for different protocols.
// Backends that want their blobs to cross a process
// boundary talk to a store through these services
// instead of calling it directly.
package transport
