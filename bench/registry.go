package bench

import (
	"github.com/jrife/stashbench/backend"
	"github.com/jrife/stashbench/backend/plugins"
)

// Registry supplies the targets a run benchmarks
type Registry interface {
	// Enabled returns the backend plugins named in names in
	// the order they run and the names that match nothing.
	// An empty names enables every plugin.
	Enabled(names []string) ([]backend.Plugin, []string)
	// Hasher returns the one-way hasher or nil if there is none
	Hasher() backend.Hasher
}

type defaultRegistry struct {
}

func (defaultRegistry) Enabled(names []string) ([]backend.Plugin, []string) {
	return plugins.Enabled(names)
}

func (defaultRegistry) Hasher() backend.Hasher {
	return plugins.Hasher()
}

// DefaultRegistry returns the registry of every
// compiled-in backend
func DefaultRegistry() Registry {
	return defaultRegistry{}
}

// StaticRegistry is a fixed list of targets
type StaticRegistry struct {
	Plugins     []backend.Plugin
	HashBackend backend.Hasher
}

// Enabled implements Registry.Enabled
func (registry StaticRegistry) Enabled(names []string) ([]backend.Plugin, []string) {
	if len(names) == 0 {
		return registry.Plugins, nil
	}

	enabled := []backend.Plugin{}
	missing := []string{}

	for _, name := range names {
		found := false

		for _, plugin := range registry.Plugins {
			if plugin.Name() == name {
				enabled = append(enabled, plugin)
				found = true

				break
			}
		}

		if !found {
			missing = append(missing, name)
		}
	}

	return enabled, missing
}

// Hasher implements Registry.Hasher
func (registry StaticRegistry) Hasher() backend.Hasher {
	return registry.HashBackend
}
