package plugins

import (
	"github.com/jrife/stashbench/backend"
	blob_plugins "github.com/jrife/stashbench/storage/blob/plugins"
)

// HasherName is the name of the one-way hasher
const HasherName = "nil"

var plugins []backend.Plugin
var hasher backend.Hasher

func init() {
	for _, blobPlugin := range blob_plugins.Plugins() {
		plugins = append(plugins, backend.NewStashPlugin(blobPlugin))
	}

	hasher = backend.NewStashHasher(HasherName, nil)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) backend.Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists all the plugins that are available
// in the order they run
func Plugins() []backend.Plugin {
	return plugins
}

// Hasher returns the one-way hasher
func Hasher() backend.Hasher {
	return hasher
}

// Enabled returns the plugins named in names in registration
// order along with the names that match no plugin. An empty
// names enables every plugin.
func Enabled(names []string) ([]backend.Plugin, []string) {
	if len(names) == 0 {
		return plugins, nil
	}

	wanted := map[string]bool{}

	for _, name := range names {
		wanted[name] = true
	}

	enabled := []backend.Plugin{}

	for _, plugin := range plugins {
		if wanted[plugin.Name()] {
			enabled = append(enabled, plugin)
			delete(wanted, plugin.Name())
		}
	}

	missing := []string{}

	for _, name := range names {
		if wanted[name] {
			missing = append(missing, name)
			delete(wanted, name)
		}
	}

	return enabled, missing
}
