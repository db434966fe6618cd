// Package value defines the test values pushed through every backend
// under benchmark.
//
// A test value is an immutable tree drawn from a fixed universe of kinds:
//
//  - Primitives: Int, Real, Bool, Text, Bytes
//  - Hashable composites: Tuple, FrozenSet
//  - Non-hashable kinds: ByteArray, List, Set, Dict
//
// Values used as set members or dict keys must be hashable. A value is
// hashable when its own kind is hashable and every element below it is
// hashable too, so a Tuple holding a List is not hashable even though
// Tuple is a hashable kind.
//
// Set members and dict keys are identified by their fingerprint, a
// canonical byte string that does not depend on member or pair order.
// Equality is strict about kinds: Int(1) and Bool(true) are different
// values, as are Bytes and ByteArray with the same contents.
package value
