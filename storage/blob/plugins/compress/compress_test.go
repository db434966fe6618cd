package compress_test

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/compress"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
)

func incompressible(n int) []byte {
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]byte, n)

	for i := range data {
		data[i] = byte(rng.IntN(256))
	}

	return data
}

func TestCompress(t *testing.T) {
	testCases := map[string]struct {
		data        []byte
		tag         compress.Tag
		expectedTag compress.Tag
	}{
		"zstd-compressible": {
			data:        bytes.Repeat([]byte("abcd"), 1000),
			tag:         compress.TagZstd,
			expectedTag: compress.TagZstd,
		},
		"lz4-compressible": {
			data:        bytes.Repeat([]byte("abcd"), 1000),
			tag:         compress.TagLZ4,
			expectedTag: compress.TagLZ4,
		},
		"zstd-incompressible": {
			data:        incompressible(1000),
			tag:         compress.TagZstd,
			expectedTag: compress.TagNone,
		},
		"lz4-incompressible": {
			data:        incompressible(1000),
			tag:         compress.TagLZ4,
			expectedTag: compress.TagNone,
		},
		"empty": {
			data:        []byte{},
			tag:         compress.TagLZ4,
			expectedTag: compress.TagNone,
		},
		"none": {
			data:        []byte("abc"),
			tag:         compress.TagNone,
			expectedTag: compress.TagNone,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			stored, err := compress.Compress(testCase.data, testCase.tag)

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if compress.Tag(stored[0]) != testCase.expectedTag {
				t.Fatalf("expected tag %s, got %s", testCase.expectedTag, compress.Tag(stored[0]))
			}

			data, err := compress.Decompress(stored)

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if !bytes.Equal(testCase.data, data) {
				t.Fatalf("expected decompressed data to match")
			}
		})
	}
}

func TestDecompressCorrupt(t *testing.T) {
	testCases := map[string][]byte{
		"empty":       {},
		"no-size":     {byte(compress.TagNone)},
		"short":       {byte(compress.TagNone), 5, 'a'},
		"unknown-tag": {9, 1, 'a'},
		"bad-lz4":     {byte(compress.TagLZ4), 100, 0xff, 0xff},
		"bad-zstd":    {byte(compress.TagZstd), 100, 0xff, 0xff},
		"huge":        {byte(compress.TagZstd), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
	}

	for name, stored := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := compress.Decompress(stored); !errors.Is(err, compress.ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %#v", err)
			}
		})
	}
}

func TestCompressingStoreShrinksBlobs(t *testing.T) {
	backing := ram.New()
	store := compress.New(backing, compress.TagZstd)
	data := bytes.Repeat([]byte("stash"), 1000)
	key := blob.DefaultKeyGenerator.Digest(data)

	if err := store.Put(key, data); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	raw, err := backing.Get(key)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if len(raw) >= len(data) {
		t.Fatalf("expected stored blob to be smaller than %d, got %d", len(data), len(raw))
	}

	stored, err := store.Get(key)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !bytes.Equal(data, stored) {
		t.Fatalf("expected round trip to preserve data")
	}
}
