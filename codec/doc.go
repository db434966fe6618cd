// Package codec provides the CBOR encoding configuration shared by
// stashbench and the reference serializer baseline built on it.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer and float encodings, no indefinite-length
// items. The same logical data always produces identical bytes, which
// is what makes the cached corpus byte-for-byte reproducible.
//
// For plain Go data:
//
//	data, err := codec.Marshal(v)
//	err = codec.Unmarshal(data, &v)
//
// For test values:
//
//	data, err := codec.EncodeValue(v)
//	v, err := codec.DecodeValue(data)
//
// Test values map onto CBOR as follows. Int, Real, Bool, Text and Bytes
// use the native CBOR major types and a Tuple is a plain array. Kinds
// with no native CBOR counterpart (ByteArray, List, FrozenSet, Set and
// Dict) are wrapped in a private tag whose number is tagBase plus the
// kind. Dict content is an array of alternating keys and values so that
// keys can be arbitrary hashable values.
package codec
