package bench

import (
	"errors"
	"fmt"
)

// State tracks one target through a benchmark run
type State int

const (
	// NotRun is the state of a target that has not started
	NotRun State = iota
	// Encoding means the target is storing the corpus
	Encoding
	// Decoding means the target is retrieving the corpus
	Decoding
	// Encoded is final for one-way targets that were only timed encoding
	Encoded
	// Verified means the retrieved corpus equals the stored one
	Verified
	// Failed means an operation failed or the round trip did not match
	Failed
)

func (state State) String() string {
	switch state {
	case NotRun:
		return "not run"
	case Encoding:
		return "encoding"
	case Decoding:
		return "decoding"
	case Encoded:
		return "encoded"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	}

	return fmt.Sprintf("State(%d)", int(state))
}

// ErrRoundTripMismatch indicates that a target returned a value
// that differs from the one it was given
var ErrRoundTripMismatch = errors.New("round trip mismatch")

// maxDiffLength bounds the diff kept on a MismatchError
const maxDiffLength = 4096

// MismatchError describes a failed round trip
type MismatchError struct {
	Name string
	// Diff is a (possibly truncated) go-cmp diff of the
	// stored value against the retrieved one
	Diff string
}

func (err *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s\n%s", err.Name, ErrRoundTripMismatch, err.Diff)
}

func (err *MismatchError) Unwrap() error {
	return ErrRoundTripMismatch
}
