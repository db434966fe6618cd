package stash

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/value"
)

// ErrUnsupported is returned when serializing something
// that is not one of the test value kinds
var ErrUnsupported = errors.New("unsupported value")

// Serialize writes v into mapping and returns the key of its root blob
func Serialize(v value.Value, mapping blob.Mapping) (blob.Key, error) {
	serializer := &serializer{mapping: mapping}
	encoded, err := serializer.serialize(v)

	if err != nil {
		return blob.Key{}, err
	}

	key, err := mapping.PutBlob(encoded)

	if err != nil {
		return blob.Key{}, fmt.Errorf("could not put root blob: %w", err)
	}

	return key, nil
}

type serializer struct {
	mapping blob.Mapping
}

func (serializer *serializer) serialize(v value.Value) ([]byte, error) {
	switch v := v.(type) {
	case value.Int:
		return appendInt([]byte{tokenInt}, int64(v)), nil
	case value.Real:
		return binary.LittleEndian.AppendUint64([]byte{tokenReal}, math.Float64bits(float64(v))), nil
	case value.Bool:
		if v {
			return []byte{tokenTrue}, nil
		}

		return []byte{tokenFalse}, nil
	case value.Text:
		return append([]byte{tokenText}, v...), nil
	case value.Bytes:
		return append([]byte{tokenBytes}, v...), nil
	case value.ByteArray:
		return append([]byte{tokenByteArray}, v...), nil
	case value.Tuple:
		return serializer.ordered(tokenTuple, v)
	case value.List:
		return serializer.ordered(tokenList, v)
	case value.Set:
		return serializer.unordered(tokenSet, v)
	case value.FrozenSet:
		return serializer.unordered(tokenFrozenSet, v)
	case value.Dict:
		chunks := make([][]byte, len(v))

		for i, pair := range v {
			chunk, err := serializer.chunk(nil, pair.Key)

			if err != nil {
				return nil, err
			}

			if chunks[i], err = serializer.chunk(chunk, pair.Value); err != nil {
				return nil, err
			}
		}

		return joinSorted(tokenDict, chunks), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
}

func (serializer *serializer) ordered(token byte, elements []value.Value) ([]byte, error) {
	encoded := []byte{token}

	for _, element := range elements {
		var err error

		if encoded, err = serializer.chunk(encoded, element); err != nil {
			return nil, err
		}
	}

	return encoded, nil
}

func (serializer *serializer) unordered(token byte, members []value.Value) ([]byte, error) {
	chunks := make([][]byte, len(members))

	for i, member := range members {
		var err error

		if chunks[i], err = serializer.chunk(nil, member); err != nil {
			return nil, err
		}
	}

	return joinSorted(token, chunks), nil
}

// chunk appends v's chunk to buf
func (serializer *serializer) chunk(buf []byte, v value.Value) ([]byte, error) {
	encoded, err := serializer.serialize(v)

	if err != nil {
		return nil, err
	}

	if len(encoded) <= maxInlineChunk {
		buf = append(buf, byte(len(encoded)))

		return append(buf, encoded...), nil
	}

	key, err := serializer.mapping.PutBlob(encoded)

	if err != nil {
		return nil, fmt.Errorf("could not put %s blob: %w", v.Kind(), err)
	}

	buf = append(buf, 0)

	return append(buf, key[:]...), nil
}

func joinSorted(token byte, chunks [][]byte) []byte {
	slices.SortFunc(chunks, bytes.Compare)

	size := 1

	for _, chunk := range chunks {
		size += len(chunk)
	}

	encoded := make([]byte, 0, size)
	encoded = append(encoded, token)

	for _, chunk := range chunks {
		encoded = append(encoded, chunk...)
	}

	return encoded
}

// appendInt appends n in the shortest two's-complement
// big-endian form that keeps its sign. Zero is empty.
func appendInt(buf []byte, n int64) []byte {
	if n == 0 {
		return buf
	}

	magnitude := uint64(n)

	if n < 0 {
		magnitude = ^magnitude
	}

	size := 1 + bits.Len64(magnitude)/8

	for i := size - 1; i >= 0; i-- {
		buf = append(buf, byte(n>>(8*i)))
	}

	return buf
}
