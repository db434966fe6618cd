package stash

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/value"
)

// ErrMalformed is returned when stored blobs do not
// describe a test value
var ErrMalformed = errors.New("malformed stash")

// maxDepth bounds nesting while deserializing. Keys cannot form
// cycles through a real mapping but a faulty one could fake them.
const maxDepth = 1024

// Deserialize reads the value whose root blob is stored under key.
// Subvalues of hashable kinds stored as the same blob may be shared
// between positions in the result. Mutable kinds are never shared.
func Deserialize(key blob.Key, mapping blob.Mapping) (value.Value, error) {
	deserializer := &deserializer{
		mapping: mapping,
		blobs:   map[blob.Key][]byte{},
		values:  map[blob.Key]value.Value{},
	}

	encoded, err := deserializer.blob(key)

	if err != nil {
		return nil, err
	}

	return deserializer.deserialize(encoded, 0)
}

type deserializer struct {
	mapping blob.Mapping
	blobs   map[blob.Key][]byte
	values  map[blob.Key]value.Value
}

func (deserializer *deserializer) blob(key blob.Key) ([]byte, error) {
	if encoded, ok := deserializer.blobs[key]; ok {
		return encoded, nil
	}

	encoded, err := deserializer.mapping.GetBlob(key)

	if err != nil {
		return nil, fmt.Errorf("could not get blob %s: %w", key, err)
	}

	deserializer.blobs[key] = encoded

	return encoded, nil
}

func (deserializer *deserializer) deserialize(encoded []byte, depth int) (value.Value, error) {
	if len(encoded) == 0 {
		return nil, fmt.Errorf("%w: empty encoding", ErrMalformed)
	}

	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nested deeper than %d", ErrMalformed, maxDepth)
	}

	token, payload := encoded[0], encoded[1:]

	switch token {
	case tokenInt:
		return readInt(payload)
	case tokenReal:
		if len(payload) != 8 {
			return nil, fmt.Errorf("%w: real has %d bytes", ErrMalformed, len(payload))
		}

		return value.Real(math.Float64frombits(binary.LittleEndian.Uint64(payload))), nil
	case tokenTrue, tokenFalse:
		if len(payload) != 0 {
			return nil, fmt.Errorf("%w: bool has a payload", ErrMalformed)
		}

		return value.Bool(token == tokenTrue), nil
	case tokenText:
		return value.Text(payload), nil
	case tokenBytes:
		return value.Bytes(bytes.Clone(payload)), nil
	case tokenByteArray:
		return value.ByteArray(bytes.Clone(payload)), nil
	}

	elements, err := deserializer.chunks(payload, depth)

	if err != nil {
		return nil, err
	}

	switch token {
	case tokenTuple:
		return value.Tuple(elements), nil
	case tokenList:
		return value.List(elements), nil
	case tokenSet:
		return value.Set(elements), nil
	case tokenFrozenSet:
		return value.FrozenSet(elements), nil
	case tokenDict:
		if len(elements)%2 != 0 {
			return nil, fmt.Errorf("%w: dict has %d chunks", ErrMalformed, len(elements))
		}

		dict := make(value.Dict, len(elements)/2)

		for i := range dict {
			dict[i] = value.Pair{Key: elements[2*i], Value: elements[2*i+1]}
		}

		return dict, nil
	}

	return nil, fmt.Errorf("%w: unknown token %d", ErrMalformed, token)
}

func (deserializer *deserializer) chunks(payload []byte, depth int) ([]value.Value, error) {
	elements := []value.Value{}

	for len(payload) > 0 {
		n := int(payload[0])
		payload = payload[1:]

		if n != 0 {
			if len(payload) < n {
				return nil, fmt.Errorf("%w: chunk of %d bytes has %d left", ErrMalformed, n, len(payload))
			}

			element, err := deserializer.deserialize(payload[:n], depth+1)

			if err != nil {
				return nil, err
			}

			elements = append(elements, element)
			payload = payload[n:]

			continue
		}

		if len(payload) < blob.KeySize {
			return nil, fmt.Errorf("%w: truncated key", ErrMalformed)
		}

		key, err := blob.KeyFromBytes(payload[:blob.KeySize])

		if err != nil {
			return nil, err
		}

		element, err := deserializer.keyed(key, depth+1)

		if err != nil {
			return nil, err
		}

		elements = append(elements, element)
		payload = payload[blob.KeySize:]
	}

	return elements, nil
}

func (deserializer *deserializer) keyed(key blob.Key, depth int) (value.Value, error) {
	if v, ok := deserializer.values[key]; ok {
		return v, nil
	}

	encoded, err := deserializer.blob(key)

	if err != nil {
		return nil, err
	}

	v, err := deserializer.deserialize(encoded, depth)

	if err != nil {
		return nil, err
	}

	if value.Hashable(v) {
		deserializer.values[key] = v
	}

	return v, nil
}

func readInt(payload []byte) (value.Value, error) {
	if len(payload) > 8 {
		return nil, fmt.Errorf("%w: int has %d bytes", ErrMalformed, len(payload))
	}

	if len(payload) == 0 {
		return value.Int(0), nil
	}

	n := int64(int8(payload[0]))

	for _, b := range payload[1:] {
		n = n<<8 | int64(b)
	}

	return value.Int(n), nil
}
