package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/jrife/stashbench/value"
)

// tagBase is the first CBOR tag number used for test value kinds.
// Tag tagBase+k wraps a value of kind k.
const tagBase uint64 = 21248

var (
	// ErrUnsupportedValue is returned when encoding a value whose
	// type is not one of the test value kinds
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrMalformedValue is returned when decoded CBOR does not
	// describe a test value
	ErrMalformedValue = errors.New("malformed value")
)

// EncodeValue encodes a test value to CBOR
func EncodeValue(v value.Value) ([]byte, error) {
	wire, err := toWire(v)

	if err != nil {
		return nil, err
	}

	return Marshal(wire)
}

// DecodeValue decodes a test value previously encoded with EncodeValue
func DecodeValue(data []byte) (value.Value, error) {
	var wire any

	if err := Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("could not decode cbor: %w", err)
	}

	return fromWire(wire)
}

// Dumps is the reference serializer's encode operation. It is
// EncodeValue under the name the benchmark report uses.
func Dumps(v value.Value) ([]byte, error) {
	return EncodeValue(v)
}

// Loads is the reference serializer's decode operation
func Loads(data []byte) (value.Value, error) {
	return DecodeValue(data)
}

func tagged(kind value.Kind, content any) cbor.Tag {
	return cbor.Tag{Number: tagBase + uint64(kind), Content: content}
}

func toWire(v value.Value) (any, error) {
	switch v := v.(type) {
	case value.Int:
		return int64(v), nil
	case value.Real:
		return float64(v), nil
	case value.Bool:
		return bool(v), nil
	case value.Text:
		return string(v), nil
	case value.Bytes:
		return []byte(v), nil
	case value.ByteArray:
		return tagged(value.KindByteArray, []byte(v)), nil
	case value.Tuple:
		return toWireSlice(v)
	case value.List:
		elements, err := toWireSlice(v)

		if err != nil {
			return nil, err
		}

		return tagged(value.KindList, elements), nil
	case value.FrozenSet:
		elements, err := toWireSlice(v)

		if err != nil {
			return nil, err
		}

		return tagged(value.KindFrozenSet, elements), nil
	case value.Set:
		elements, err := toWireSlice(v)

		if err != nil {
			return nil, err
		}

		return tagged(value.KindSet, elements), nil
	case value.Dict:
		elements, err := toWireSlice(value.Elements(v))

		if err != nil {
			return nil, err
		}

		return tagged(value.KindDict, elements), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func toWireSlice(elements []value.Value) ([]any, error) {
	wire := make([]any, len(elements))

	for i, element := range elements {
		w, err := toWire(element)

		if err != nil {
			return nil, err
		}

		wire[i] = w
	}

	return wire, nil
}

func fromWire(wire any) (value.Value, error) {
	switch w := wire.(type) {
	case uint64:
		if w > math.MaxInt64 {
			return nil, fmt.Errorf("%w: integer %d out of range", ErrMalformedValue, w)
		}

		return value.Int(int64(w)), nil
	case int64:
		return value.Int(w), nil
	case float64:
		return value.Real(w), nil
	case float32:
		return value.Real(float64(w)), nil
	case bool:
		return value.Bool(w), nil
	case string:
		return value.Text(w), nil
	case []byte:
		return value.Bytes(w), nil
	case []any:
		elements, err := fromWireSlice(w)

		if err != nil {
			return nil, err
		}

		return value.Tuple(elements), nil
	case cbor.Tag:
		return fromWireTag(w)
	}

	return nil, fmt.Errorf("%w: unexpected %T", ErrMalformedValue, wire)
}

func fromWireTag(tag cbor.Tag) (value.Value, error) {
	if tag.Number < tagBase {
		return nil, fmt.Errorf("%w: unknown tag %d", ErrMalformedValue, tag.Number)
	}

	kind := value.Kind(tag.Number - tagBase)

	if tag.Number-tagBase > 0xff || !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown tag %d", ErrMalformedValue, tag.Number)
	}

	if kind == value.KindByteArray {
		data, ok := tag.Content.([]byte)

		if !ok {
			return nil, fmt.Errorf("%w: bytearray content is %T", ErrMalformedValue, tag.Content)
		}

		return value.ByteArray(data), nil
	}

	content, ok := tag.Content.([]any)

	if !ok {
		return nil, fmt.Errorf("%w: %s content is %T", ErrMalformedValue, kind, tag.Content)
	}

	elements, err := fromWireSlice(content)

	if err != nil {
		return nil, err
	}

	switch kind {
	case value.KindList:
		return value.List(elements), nil
	case value.KindFrozenSet:
		return value.FrozenSet(elements), nil
	case value.KindSet:
		return value.Set(elements), nil
	case value.KindDict:
		if len(elements)%2 != 0 {
			return nil, fmt.Errorf("%w: dict has %d elements", ErrMalformedValue, len(elements))
		}

		dict := make(value.Dict, len(elements)/2)

		for i := range dict {
			dict[i] = value.Pair{Key: elements[2*i], Value: elements[2*i+1]}
		}

		return dict, nil
	}

	return nil, fmt.Errorf("%w: %s is never tagged", ErrMalformedValue, kind)
}

func fromWireSlice(wire []any) ([]value.Value, error) {
	elements := make([]value.Value, len(wire))

	for i, w := range wire {
		element, err := fromWire(w)

		if err != nil {
			return nil, err
		}

		elements[i] = element
	}

	return elements, nil
}
