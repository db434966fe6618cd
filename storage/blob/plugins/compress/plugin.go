package compress

import (
	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
)

const (
	ZstdDriverName = "zstd"
	LZ4DriverName  = "lz4"
)

// Plugins returns one plugin per algorithm. Each
// compresses into an in-memory store so the timings
// isolate the cost of compression.
func Plugins() []blob.Plugin {
	return []blob.Plugin{
		&CompressPlugin{name: ZstdDriverName, tag: TagZstd},
		&CompressPlugin{name: LZ4DriverName, tag: TagLZ4},
	}
}

type CompressPlugin struct {
	name string
	tag  Tag
}

func (plugin *CompressPlugin) Name() string {
	return plugin.name
}

func (plugin *CompressPlugin) NewStore(options blob.PluginOptions) (blob.Store, error) {
	return New(ram.New(), plugin.tag), nil
}

func (plugin *CompressPlugin) NewTempStore() (blob.Store, error) {
	return plugin.NewStore(blob.PluginOptions{})
}
