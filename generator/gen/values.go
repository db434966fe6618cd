// Package gen contains gopter generators for test values
package gen

import (
	"github.com/jrife/stashbench/generator"
	"github.com/jrife/stashbench/value"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

// Seeded is a value together with the seed and depth
// that reproduce it
type Seeded struct {
	Seed         uint64
	Depth        int
	HashableOnly bool
	Value        value.Value
}

// Values returns a gopter generator of test values nested
// at most maxDepth levels deep
func Values(maxDepth int) gopter.Gen {
	return SeededValues(maxDepth).Map(func(seeded Seeded) value.Value {
		return seeded.Value
	})
}

// SeededValues returns a gopter generator of test values nested at
// most maxDepth levels deep, along with the parameters that produced
// them. Shrinking happens on the seed and depth.
func SeededValues(maxDepth int) gopter.Gen {
	return gopter.CombineGens(
		gen.UInt64(),
		gen.IntRange(0, maxDepth),
		gen.Bool(),
	).Map(func(g []interface{}) Seeded {
		seed := g[0].(uint64)
		depth := g[1].(int)
		hashableOnly := g[2].(bool)

		return Seeded{
			Seed:         seed,
			Depth:        depth,
			HashableOnly: hashableOnly,
			Value:        generator.NewSeeded(seed).Generate(depth, hashableOnly),
		}
	})
}
