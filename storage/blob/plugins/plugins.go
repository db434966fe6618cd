package plugins

import (
	"github.com/jrife/stashbench/storage/blob"
	"github.com/jrife/stashbench/storage/blob/plugins/bbolt"
	"github.com/jrife/stashbench/storage/blob/plugins/compress"
	"github.com/jrife/stashbench/storage/blob/plugins/fsdb"
	"github.com/jrife/stashbench/storage/blob/plugins/lsm"
	"github.com/jrife/stashbench/storage/blob/plugins/ram"
	"github.com/jrife/stashbench/storage/blob/plugins/remote"
	"github.com/jrife/stashbench/storage/blob/plugins/treemap"
)

var plugins []blob.Plugin

// Drivers run in this order
func init() {
	plugins = append(plugins, treemap.Plugins()...)
	plugins = append(plugins, ram.Plugins()...)
	plugins = append(plugins, fsdb.Plugins()...)
	plugins = append(plugins, bbolt.Plugins()...)
	plugins = append(plugins, lsm.Plugins()...)
	plugins = append(plugins, compress.Plugins()...)
	plugins = append(plugins, remote.Plugins()...)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) blob.Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists all the plugins that are available
func Plugins() []blob.Plugin {
	return plugins
}
