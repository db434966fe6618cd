package ram_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
)

func TestShardedStore(t *testing.T) {
	for _, shards := range []int{0, 1, 4, ram.DefaultShards} {
		t.Run(fmt.Sprintf("shards-%d", shards), func(t *testing.T) {
			store := ram.NewSharded(shards)
			keys := []blob.Key{}

			for i := 0; i < 100; i++ {
				data := []byte(fmt.Sprintf("blob-%d", i))
				key := blob.DefaultKeyGenerator.Digest(data)
				keys = append(keys, key)

				if err := store.Put(key, data); err != nil {
					t.Fatalf("expected err to be nil, got %#v", err)
				}
			}

			if store.Len() != 100 {
				t.Fatalf("expected 100 blobs, got %d", store.Len())
			}

			for i, key := range keys {
				data, err := store.Get(key)

				if err != nil {
					t.Fatalf("expected err to be nil, got %#v", err)
				}

				if !bytes.Equal(data, []byte(fmt.Sprintf("blob-%d", i))) {
					t.Fatalf("unexpected blob %q", data)
				}
			}

			if err := store.Delete(); err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if store.Len() != 0 {
				t.Fatalf("expected no blobs after delete, got %d", store.Len())
			}

			if _, err := store.Get(keys[0]); !errors.Is(err, blob.ErrClosed) {
				t.Fatalf("expected ErrClosed, got %#v", err)
			}
		})
	}
}

func TestPutCopiesData(t *testing.T) {
	store := ram.New()
	data := []byte("abc")
	key := blob.DefaultKeyGenerator.Digest(data)

	if err := store.Put(key, data); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	data[0] = 'x'
	stored, err := store.Get(key)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if string(stored) != "abc" {
		t.Fatalf("expected abc, got %q", stored)
	}
}

func TestShardsOption(t *testing.T) {
	testCases := map[string]struct {
		options blob.PluginOptions
		valid   bool
	}{
		"default":  {options: blob.PluginOptions{}, valid: true},
		"explicit": {options: blob.PluginOptions{"shards": 2}, valid: true},
		"zero":     {options: blob.PluginOptions{"shards": 0}, valid: false},
		"string":   {options: blob.PluginOptions{"shards": "2"}, valid: false},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			store, err := (&ram.RAMPlugin{}).NewStore(testCase.options)

			if testCase.valid != (err == nil) {
				t.Fatalf("expected valid=%t, got %#v", testCase.valid, err)
			}

			if store != nil {
				store.Close()
			}
		})
	}
}
