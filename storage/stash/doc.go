// Package stash serializes test values into a tree of
// content-addressed blobs.
//
// Every value encodes as a one-byte token followed by a payload.
// Composite payloads are a run of chunks, one per element. A chunk
// is either a length byte (1..255) followed by the element's
// encoding inline, or a zero byte followed by the 32-byte key of a
// blob holding the element's encoding. Set, frozenset and dict
// chunks are sorted bytewise, so equal values always serialize to
// the same root key no matter their member order.
//
// Payloads by token:
//
//	Int        minimal two's-complement big-endian, zero is empty
//	Real       IEEE 754 binary64, little-endian
//	Text       raw bytes
//	Bytes      raw bytes
//	ByteArray  raw bytes
//	Tuple      chunks in order
//	List       chunks in order
//	Set        sorted chunks
//	FrozenSet  sorted chunks
//	Dict       sorted key chunk + value chunk pairs
//	True       empty
//	False      empty
package stash
