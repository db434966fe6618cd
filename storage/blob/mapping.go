package blob

import (
	"bytes"
	"errors"
	"fmt"
)

var _ Mapping = (*ContentAddressedMapping)(nil)

// ContentAddressedMapping is a Mapping layered over a bucket
type ContentAddressedMapping struct {
	bucket       Bucket
	keyGenerator KeyGenerator
}

// NewMapping creates a mapping that stores blobs in bucket under
// keys derived by keyGenerator. If keyGenerator is nil the
// DefaultKeyGenerator is used.
func NewMapping(bucket Bucket, keyGenerator KeyGenerator) *ContentAddressedMapping {
	if keyGenerator == nil {
		keyGenerator = DefaultKeyGenerator
	}

	return &ContentAddressedMapping{
		bucket:       bucket,
		keyGenerator: keyGenerator,
	}
}

// PutBlob implements Mapping.PutBlob
func (mapping *ContentAddressedMapping) PutBlob(b []byte) (Key, error) {
	key := mapping.keyGenerator.Digest(b)
	existing, err := mapping.bucket.Get(key)

	if err == nil {
		if !bytes.Equal(existing, b) {
			return key, fmt.Errorf("could not put blob %s: %w", key, ErrCollision)
		}

		return key, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return key, fmt.Errorf("could not check for existing blob %s: %w", key, err)
	}

	if err := mapping.bucket.Put(key, b); err != nil {
		return key, fmt.Errorf("could not put blob %s: %w", key, err)
	}

	return key, nil
}

// GetBlob implements Mapping.GetBlob
func (mapping *ContentAddressedMapping) GetBlob(key Key) ([]byte, error) {
	return mapping.bucket.Get(key)
}

var _ Mapping = (*DiscardMapping)(nil)

// DiscardMapping computes keys but stores nothing. It turns
// the stash serializer into a one-way structural hash.
type DiscardMapping struct {
	keyGenerator KeyGenerator
}

// NewDiscardMapping creates a mapping that only digests. If
// keyGenerator is nil the DefaultKeyGenerator is used.
func NewDiscardMapping(keyGenerator KeyGenerator) *DiscardMapping {
	if keyGenerator == nil {
		keyGenerator = DefaultKeyGenerator
	}

	return &DiscardMapping{keyGenerator: keyGenerator}
}

// PutBlob implements Mapping.PutBlob
func (mapping *DiscardMapping) PutBlob(b []byte) (Key, error) {
	return mapping.keyGenerator.Digest(b), nil
}

// GetBlob implements Mapping.GetBlob. It always returns ErrNotFound.
func (mapping *DiscardMapping) GetBlob(key Key) ([]byte, error) {
	return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
}
