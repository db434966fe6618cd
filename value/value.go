package value

import (
	"fmt"
)

// Kind identifies the type of a test value
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindReal
	KindBool
	KindText
	KindBytes
	KindByteArray
	KindTuple
	KindList
	KindFrozenSet
	KindSet
	KindDict
)

var kindNames = map[Kind]string{
	KindInt:       "int",
	KindReal:      "real",
	KindBool:      "bool",
	KindText:      "text",
	KindBytes:     "bytes",
	KindByteArray: "bytearray",
	KindTuple:     "tuple",
	KindList:      "list",
	KindFrozenSet: "frozenset",
	KindSet:       "set",
	KindDict:      "dict",
}

// String returns the name of the kind
func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", uint8(kind))
}

// Valid returns true if kind is one of the known kinds
func (kind Kind) Valid() bool {
	_, ok := kindNames[kind]

	return ok
}

// Hashable returns true if values of this kind may be used
// as set members or dict keys, provided their elements are
// hashable as well.
func (kind Kind) Hashable() bool {
	switch kind {
	case KindInt, KindReal, KindBool, KindText, KindBytes, KindTuple, KindFrozenSet:
		return true
	}

	return false
}

// Composite returns true if values of this kind contain
// other values.
func (kind Kind) Composite() bool {
	switch kind {
	case KindTuple, KindList, KindFrozenSet, KindSet, KindDict:
		return true
	}

	return false
}

// Value is a test value
type Value interface {
	Kind() Kind
}

// Int is an integer value
type Int int64

// Real is a floating point value
type Real float64

// Bool is a boolean value
type Bool bool

// Text is a string value
type Text string

// Bytes is an immutable byte sequence
type Bytes []byte

// ByteArray is a mutable byte sequence
type ByteArray []byte

// Tuple is an immutable ordered sequence
type Tuple []Value

// List is a mutable ordered sequence
type List []Value

// FrozenSet is an immutable unordered collection of unique
// hashable members. Use NewFrozenSet to build one.
type FrozenSet []Value

// Set is a mutable unordered collection of unique hashable
// members. Use NewSet to build one.
type Set []Value

// Pair is a single dict entry
type Pair struct {
	Key   Value
	Value Value
}

// Dict is a mapping with unique hashable keys. Use NewDict
// to build one.
type Dict []Pair

func (Int) Kind() Kind       { return KindInt }
func (Real) Kind() Kind      { return KindReal }
func (Bool) Kind() Kind      { return KindBool }
func (Text) Kind() Kind      { return KindText }
func (Bytes) Kind() Kind     { return KindBytes }
func (ByteArray) Kind() Kind { return KindByteArray }
func (Tuple) Kind() Kind     { return KindTuple }
func (List) Kind() Kind      { return KindList }
func (FrozenSet) Kind() Kind { return KindFrozenSet }
func (Set) Kind() Kind       { return KindSet }
func (Dict) Kind() Kind      { return KindDict }

// NewSet builds a set from members. Members that are equal
// to an earlier member are dropped.
func NewSet(members ...Value) Set {
	return Set(unique(members))
}

// NewFrozenSet builds a frozen set from members. Members that
// are equal to an earlier member are dropped.
func NewFrozenSet(members ...Value) FrozenSet {
	return FrozenSet(unique(members))
}

// NewDict builds a dict from pairs. A key that repeats keeps
// its first position and takes the value of its last occurrence.
func NewDict(pairs ...Pair) Dict {
	index := make(map[string]int, len(pairs))
	dict := make(Dict, 0, len(pairs))

	for _, pair := range pairs {
		fingerprint := string(Fingerprint(pair.Key))

		if i, ok := index[fingerprint]; ok {
			dict[i].Value = pair.Value

			continue
		}

		index[fingerprint] = len(dict)
		dict = append(dict, pair)
	}

	return dict
}

func unique(members []Value) []Value {
	seen := make(map[string]struct{}, len(members))
	result := make([]Value, 0, len(members))

	for _, member := range members {
		fingerprint := string(Fingerprint(member))

		if _, ok := seen[fingerprint]; ok {
			continue
		}

		seen[fingerprint] = struct{}{}
		result = append(result, member)
	}

	return result
}

// Elements returns the direct children of v. Dict children are
// returned as alternating keys and values. Primitives have no
// children.
func Elements(v Value) []Value {
	switch v := v.(type) {
	case Tuple:
		return v
	case List:
		return v
	case FrozenSet:
		return v
	case Set:
		return v
	case Dict:
		elements := make([]Value, 0, len(v)*2)

		for _, pair := range v {
			elements = append(elements, pair.Key, pair.Value)
		}

		return elements
	}

	return nil
}

// Hashable returns true if v and everything it contains
// may be used as a set member or dict key.
func Hashable(v Value) bool {
	if v == nil || !v.Kind().Hashable() {
		return false
	}

	for _, element := range Elements(v) {
		if !Hashable(element) {
			return false
		}
	}

	return true
}

// Walk calls fn for v and every value below it in depth-first
// order. Walk stops and returns false as soon as fn returns false.
func Walk(v Value, fn func(v Value) bool) bool {
	if !fn(v) {
		return false
	}

	for _, element := range Elements(v) {
		if !Walk(element, fn) {
			return false
		}
	}

	return true
}

// Depth returns the nesting depth of v. Primitives and empty
// composites have depth 0.
func Depth(v Value) int {
	depth := 0

	for _, element := range Elements(v) {
		if d := Depth(element) + 1; d > depth {
			depth = d
		}
	}

	return depth
}

// Count returns the number of values in the tree rooted at v
func Count(v Value) int {
	count := 0

	Walk(v, func(Value) bool {
		count++

		return true
	})

	return count
}

// Describe returns a short summary of v suitable for logs
func Describe(v Value) string {
	if v == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s(depth=%d, values=%d)", v.Kind(), Depth(v), Count(v))
}
