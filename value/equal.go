package value

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

// Equal reports whether a and b are structurally equal.
// Kinds must match exactly. Sets are compared without regard
// to member order and dicts without regard to pair order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case Int:
		return a == b.(Int)
	case Real:
		return a == b.(Real)
	case Bool:
		return a == b.(Bool)
	case Text:
		return a == b.(Text)
	case Bytes:
		return bytes.Equal(a, b.(Bytes))
	case ByteArray:
		return bytes.Equal(a, b.(ByteArray))
	case Tuple:
		return equalSequence(a, b.(Tuple))
	case List:
		return equalSequence(a, b.(List))
	case FrozenSet:
		return equalMembers(a, b.(FrozenSet))
	case Set:
		return equalMembers(a, b.(Set))
	case Dict:
		return equalDict(a, b.(Dict))
	}

	return false
}

func equalSequence(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

func equalMembers(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}

	members := make(map[string]Value, len(b))

	for _, member := range b {
		members[string(Fingerprint(member))] = member
	}

	if len(members) != len(b) {
		return false
	}

	for _, member := range a {
		other, ok := members[string(Fingerprint(member))]

		if !ok || !Equal(member, other) {
			return false
		}
	}

	return true
}

func equalDict(a, b Dict) bool {
	if len(a) != len(b) {
		return false
	}

	values := make(map[string]Value, len(b))

	for _, pair := range b {
		values[string(Fingerprint(pair.Key))] = pair.Value
	}

	if len(values) != len(b) {
		return false
	}

	for _, pair := range a {
		other, ok := values[string(Fingerprint(pair.Key))]

		if !ok || !Equal(pair.Value, other) {
			return false
		}
	}

	return true
}

// Fingerprint returns a canonical byte string identifying v.
// Two values have the same fingerprint if they are equal, with
// the exception of NaN reals which share a fingerprint with
// themselves but are never equal.
func Fingerprint(v Value) []byte {
	return appendFingerprint(nil, v)
}

func appendFingerprint(buf []byte, v Value) []byte {
	if v == nil {
		return append(buf, 0)
	}

	buf = append(buf, byte(v.Kind()))

	switch v := v.(type) {
	case Int:
		return binary.BigEndian.AppendUint64(buf, uint64(v))
	case Real:
		f := float64(v)

		// 0.0 == -0.0
		if f == 0 {
			f = 0
		}

		return binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
	case Bool:
		if v {
			return append(buf, 1)
		}

		return append(buf, 0)
	case Text:
		return appendSized(buf, []byte(v))
	case Bytes:
		return appendSized(buf, v)
	case ByteArray:
		return appendSized(buf, v)
	case Tuple:
		return appendSequence(buf, v)
	case List:
		return appendSequence(buf, v)
	case FrozenSet:
		return appendUnordered(buf, v)
	case Set:
		return appendUnordered(buf, v)
	case Dict:
		entries := make([][]byte, len(v))

		for i, pair := range v {
			entries[i] = appendFingerprint(appendFingerprint(nil, pair.Key), pair.Value)
		}

		return appendSorted(buf, entries)
	}

	return buf
}

func appendSized(buf []byte, data []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(data)))

	return append(buf, data...)
}

func appendSequence(buf []byte, elements []Value) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(elements)))

	for _, element := range elements {
		buf = appendFingerprint(buf, element)
	}

	return buf
}

func appendUnordered(buf []byte, members []Value) []byte {
	entries := make([][]byte, len(members))

	for i, member := range members {
		entries[i] = appendFingerprint(nil, member)
	}

	return appendSorted(buf, entries)
}

func appendSorted(buf []byte, entries [][]byte) []byte {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i], entries[j]) < 0
	})

	buf = binary.AppendUvarint(buf, uint64(len(entries)))

	for _, entry := range entries {
		buf = appendSized(buf, entry)
	}

	return buf
}
