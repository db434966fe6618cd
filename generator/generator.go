// Package generator synthesizes reproducible, structurally diverse test
// values and selects the benchmark corpus from them.
package generator

import (
	"math/rand/v2"

	"github.com/jrife/stashbench/value"
)

const (
	// IntMin and IntMax bound generated integers (inclusive)
	IntMin = -100
	IntMax = 100
	// RealStdDev is the standard deviation of generated reals.
	// Their mean is 0.
	RealStdDev = 100
	// TextMaxLength bounds generated text length (exclusive)
	TextMaxLength = 1000
	// BytesLength is the exact length of generated byte sequences
	BytesLength = 1000
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// The order of these universes is part of the reproducibility
// contract: a seed always selects the same kinds.
var (
	hashableKinds = []value.Kind{
		value.KindText,
		value.KindBytes,
		value.KindInt,
		value.KindReal,
		value.KindBool,
		value.KindTuple,
		value.KindFrozenSet,
	}
	allKinds = append(append([]value.Kind{}, hashableKinds...),
		value.KindByteArray,
		value.KindList,
		value.KindSet,
		value.KindDict,
	)
	hashablePrimitiveKinds = primitives(hashableKinds)
	allPrimitiveKinds      = primitives(allKinds)
)

func primitives(kinds []value.Kind) []value.Kind {
	result := []value.Kind{}

	for _, kind := range kinds {
		if !kind.Composite() {
			result = append(result, kind)
		}
	}

	return result
}

// Universe returns the kinds Generate samples from for
// the given depth and hashability constraint.
func Universe(depth int, hashableOnly bool) []value.Kind {
	switch {
	case depth <= 0 && hashableOnly:
		return hashablePrimitiveKinds
	case depth <= 0:
		return allPrimitiveKinds
	case hashableOnly:
		return hashableKinds
	}

	return allKinds
}

// Generator produces random test values from an owned
// random source. It must only be used by one goroutine
// at a time.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator that draws from rng
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded creates a generator whose output is fully
// determined by seed
func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, 0)))
}

// Generate returns a random value nested at most depth levels deep.
// Composite values have exactly depth elements, each generated with
// depth-1, so at depth 0 only primitives are produced. If hashableOnly
// is true the result and everything below it is hashable. Set members
// and dict keys are always generated hashable regardless of
// hashableOnly, while dict values are unconstrained.
func (generator *Generator) Generate(depth int, hashableOnly bool) value.Value {
	if depth < 0 {
		depth = 0
	}

	universe := Universe(depth, hashableOnly)

	switch kind := universe[generator.rng.IntN(len(universe))]; kind {
	case value.KindInt:
		return value.Int(IntMin + generator.rng.IntN(IntMax-IntMin+1))
	case value.KindReal:
		return value.Real(generator.rng.NormFloat64() * RealStdDev)
	case value.KindBool:
		return value.Bool(generator.rng.IntN(2) == 1)
	case value.KindText:
		return value.Text(generator.text())
	case value.KindBytes:
		return value.Bytes(generator.bytes())
	case value.KindByteArray:
		return value.ByteArray(generator.bytes())
	case value.KindTuple:
		return value.Tuple(generator.elements(depth, hashableOnly))
	case value.KindList:
		return value.List(generator.elements(depth, hashableOnly))
	case value.KindFrozenSet:
		return value.NewFrozenSet(generator.elements(depth, true)...)
	case value.KindSet:
		return value.NewSet(generator.elements(depth, true)...)
	case value.KindDict:
		pairs := make([]value.Pair, depth)

		for i := range pairs {
			pairs[i].Key = generator.Generate(depth-1, true)
			pairs[i].Value = generator.Generate(depth-1, false)
		}

		return value.NewDict(pairs...)
	}

	panic("generator: universe contains an unknown kind")
}

func (generator *Generator) elements(depth int, hashableOnly bool) []value.Value {
	elements := make([]value.Value, depth)

	for i := range elements {
		elements[i] = generator.Generate(depth-1, hashableOnly)
	}

	return elements
}

func (generator *Generator) text() string {
	text := make([]byte, generator.rng.IntN(TextMaxLength))

	for i := range text {
		text[i] = letters[generator.rng.IntN(len(letters))]
	}

	return string(text)
}

func (generator *Generator) bytes() []byte {
	data := make([]byte, BytesLength)

	for i := range data {
		data[i] = byte(generator.rng.IntN(256))
	}

	return data
}
