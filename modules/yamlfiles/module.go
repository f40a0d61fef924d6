// Package yamlfiles provides a resource loader that reads resource
// definitions from YAML files, for projects that keep part of their resources
// as static files next to their Go functions.
package yamlfiles

import (
	"log/slog"
	"path/filepath"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/fsutil"
	"github.com/specialistvlad/bundlefn/registry"
	"github.com/specialistvlad/bundlefn/resources"
)

// Reference is the reference the loader is registered under.
const Reference = "yamlfiles:load_resources"

// DefaultDir is searched when Module.Dir is empty.
const DefaultDir = "resources"

// Module registers the YAML loader.
type Module struct {
	// Dir is searched recursively for *.yml and *.yaml files. Relative
	// paths are resolved against the working directory.
	Dir string
}

// Register implements registry.Module.
func (m Module) Register(r *registry.Registry) {
	r.Register(Reference, resources.Loader(m.Load))
}

// Load reads every YAML file under the module's directory, in lexical order.
// A missing directory yields no resources.
func (m Module) Load(core.Bundle) (*resources.Resources, error) {
	dir := m.Dir
	if dir == "" {
		dir = DefaultDir
	}
	files, err := fsutil.FindFilesByExtension(dir, ".yml", ".yaml")
	if err != nil {
		return nil, err
	}
	slog.Debug("Found resource files.", "dir", dir, "count", len(files))

	out := resources.New()
	for _, file := range files {
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
		out.AddResources(resources.LoadYAML(file))
	}
	return out, nil
}
