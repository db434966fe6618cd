package blob

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// KeySize is the size of a key in bytes
const KeySize = 32

// Key is a 32-byte content address
type Key [KeySize]byte

// String returns the key as lowercase hex
func (key Key) String() string {
	return hex.EncodeToString(key[:])
}

// KeyFromBytes copies a key out of b, which must be exactly KeySize bytes
func KeyFromBytes(b []byte) (Key, error) {
	var key Key

	if len(b) != KeySize {
		return key, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(b))
	}

	copy(key[:], b)

	return key, nil
}

// KeyGenerator derives a key from a blob
type KeyGenerator interface {
	Digest(data []byte) Key
}

// Blake3KeyGenerator derives keys with BLAKE3 in keyed mode.
// The domain key separates keys derived for different purposes
// so the same bytes hashed in another context never produce
// the same key.
type Blake3KeyGenerator struct {
	domainKey [32]byte
}

// NewBlake3KeyGenerator creates a key generator for the domain.
// The domain key is the ASCII domain zero-padded to 32 bytes.
// Domains longer than 32 bytes are truncated.
func NewBlake3KeyGenerator(domain string) *Blake3KeyGenerator {
	generator := &Blake3KeyGenerator{}
	copy(generator.domainKey[:], domain)

	return generator
}

// DefaultKeyGenerator is used by mappings that are not
// given a key generator
var DefaultKeyGenerator KeyGenerator = NewBlake3KeyGenerator("stashbench.blob")

// Digest implements KeyGenerator.Digest
func (generator *Blake3KeyGenerator) Digest(data []byte) Key {
	hasher, err := blake3.NewKeyed(generator.domainKey[:])

	if err != nil {
		panic("blob: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	hasher.Write(data)

	var key Key
	copy(key[:], hasher.Sum(nil))

	return key
}
