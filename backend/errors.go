package backend

import (
	"errors"
	"fmt"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/compress"
	"github.com/jrife/stashbench/storage/stash"
)

var (
	// ErrClosed indicates that the backend was closed
	ErrClosed = errors.New("backend was closed")
	// ErrNotFound indicates that nothing is stored under the handle
	ErrNotFound = errors.New("handle not found")
	// ErrCorrupt indicates that stored data could not be decoded
	ErrCorrupt = errors.New("stored value is corrupt")
	// ErrInvalidHandle indicates that a handle was not produced by the backend
	ErrInvalidHandle = errors.New("invalid handle")
)

func wrapError(wrap string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, blob.ErrClosed):
		return fmt.Errorf("%s: %w: %w", wrap, ErrClosed, err)
	case errors.Is(err, blob.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", wrap, ErrNotFound, err)
	case errors.Is(err, stash.ErrMalformed), errors.Is(err, compress.ErrCorrupt):
		return fmt.Errorf("%s: %w: %w", wrap, ErrCorrupt, err)
	}

	return fmt.Errorf("%s: %w", wrap, err)
}
