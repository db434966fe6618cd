package compress

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxBlobSize bounds the uncompressed size a header may claim
const maxBlobSize = 1 << 30

// Tag identifies how a stored blob was compressed. Every
// stored blob starts with its tag followed by the uvarint
// length of the uncompressed blob.
type Tag uint8

const (
	// TagNone marks blobs stored as-is because
	// compression would not make them smaller
	TagNone Tag = 0
	// TagLZ4 marks LZ4 block compression
	TagLZ4 Tag = 1
	// TagZstd marks zstd compression at the default level
	TagZstd Tag = 2
)

// String returns the human-readable name of a compression tag.
func (tag Tag) String() string {
	switch tag {
	case TagNone:
		return "none"
	case TagLZ4:
		return "lz4"
	case TagZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

var (
	// ErrCorrupt indicates that a stored blob could not be decompressed
	ErrCorrupt = errors.New("corrupt compressed blob")

	errIncompressible = errors.New("incompressible")
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)

	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)

	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress returns data prefixed with its header, compressed
// with tag's algorithm when that makes it smaller
func Compress(data []byte, tag Tag) ([]byte, error) {
	var compressed []byte
	var err error

	switch tag {
	case TagNone:
		err = errIncompressible
	case TagLZ4:
		compressed, err = compressLZ4(data)
	case TagZstd:
		compressed, err = compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}

	if errors.Is(err, errIncompressible) {
		tag = TagNone
		compressed = data
	} else if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(compressed))
	out = append(out, byte(tag))
	out = binary.AppendUvarint(out, uint64(len(data)))

	return append(out, compressed...), nil
}

// Decompress reverses Compress
func Decompress(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorrupt)
	}

	tag := Tag(stored[0])
	size, n := binary.Uvarint(stored[1:])

	if n <= 0 {
		return nil, fmt.Errorf("%w: bad size header", ErrCorrupt)
	}

	if size > maxBlobSize {
		return nil, fmt.Errorf("%w: size %d is too large", ErrCorrupt, size)
	}

	payload := stored[1+n:]

	switch tag {
	case TagNone:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: size %d does not match expected %d", ErrCorrupt, len(payload), size)
		}

		return payload, nil
	case TagLZ4:
		return decompressLZ4(payload, int(size))
	case TagZstd:
		return decompressZstd(payload, int(size))
	}

	return nil, fmt.Errorf("%w: unknown tag %s", ErrCorrupt, tag)
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)

	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 for incompressible data
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}

	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)

	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}

	if read != uncompressedSize {
		return nil, fmt.Errorf("%w: lz4 got %d bytes, expected %d", ErrCorrupt, read, uncompressedSize)
	}

	return destination, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)

	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}

	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))

	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
	}

	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("%w: zstd got %d bytes, expected %d", ErrCorrupt, len(result), uncompressedSize)
	}

	return result, nil
}

var _ blob.Store = (*CompressingStore)(nil)

// CompressingStore compresses blobs on their way into
// another store and decompresses them on the way out
type CompressingStore struct {
	store blob.Store
	tag   Tag
}

// New wraps store so that blobs are compressed with tag's algorithm
func New(store blob.Store, tag Tag) *CompressingStore {
	return &CompressingStore{store: store, tag: tag}
}

func (store *CompressingStore) Put(key blob.Key, data []byte) error {
	compressed, err := Compress(data, store.tag)

	if err != nil {
		return fmt.Errorf("could not compress blob %s: %w", key, err)
	}

	return store.store.Put(key, compressed)
}

func (store *CompressingStore) Get(key blob.Key) ([]byte, error) {
	stored, err := store.store.Get(key)

	if err != nil {
		return nil, err
	}

	data, err := Decompress(stored)

	if err != nil {
		return nil, fmt.Errorf("could not decompress blob %s: %w", key, err)
	}

	return data, nil
}

// Flush flushes the underlying store if it buffers writes
func (store *CompressingStore) Flush() error {
	if flusher, ok := store.store.(blob.Flusher); ok {
		return flusher.Flush()
	}

	return nil
}

func (store *CompressingStore) Close() error {
	return store.store.Close()
}

func (store *CompressingStore) Delete() error {
	return store.store.Delete()
}
