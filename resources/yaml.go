package resources

import (
	"fmt"
	"os"

	"github.com/specialistvlad/bundlefn/core"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads resource definitions from a YAML file laid out like the
// `resources` section of the configuration:
//
//	resources:
//	  jobs:
//	    nightly:
//	      name: Nightly refresh
//
// Problems are reported as diagnostics on the returned collection.
func LoadYAML(path string) *Resources {
	data, err := os.ReadFile(path)
	if err != nil {
		r := New()
		r.AddDiagnostics(core.FromError(err, "Failed to read resource file",
			core.WithLocation(core.Location{File: path})))
		return r
	}
	return ParseYAML(path, data)
}

// ParseYAML is like LoadYAML for data already in memory. filename is only
// used for locations.
func ParseYAML(filename string, data []byte) *Resources {
	r := New()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		r.AddDiagnostics(core.FromError(err, "Failed to parse resource file",
			core.WithLocation(core.Location{File: filename})))
		return r
	}
	if len(doc.Content) == 0 {
		return r
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		r.AddDiagnosticError("Resource file must contain a mapping",
			core.WithLocation(nodeLocation(filename, root)))
		return r
	}

	section := lookup(root, "resources")
	if section == nil {
		return r
	}
	if section.Kind != yaml.MappingNode {
		r.AddDiagnosticError("The 'resources' section must be a mapping",
			core.WithPath("resources"),
			core.WithLocation(nodeLocation(filename, section)))
		return r
	}

	for i := 0; i+1 < len(section.Content); i += 2 {
		typeKey, byName := section.Content[i], section.Content[i+1]
		kind, ok := KindFromPlural(typeKey.Value)
		if !ok {
			r.AddDiagnosticWarning(fmt.Sprintf("Unknown resource type '%s' is ignored", typeKey.Value),
				core.WithPath("resources", typeKey.Value),
				core.WithLocation(nodeLocation(filename, typeKey)))
			continue
		}
		if byName.Kind != yaml.MappingNode {
			r.AddDiagnosticError(fmt.Sprintf("Resources of type '%s' must be a mapping of names", typeKey.Value),
				core.WithPath("resources", typeKey.Value),
				core.WithLocation(nodeLocation(filename, byName)))
			continue
		}

		for j := 0; j+1 < len(byName.Content); j += 2 {
			nameKey, valueNode := byName.Content[j], byName.Content[j+1]
			loc := nodeLocation(filename, nameKey)

			var raw any
			if err := valueNode.Decode(&raw); err != nil {
				r.AddDiagnostics(core.FromError(err,
					fmt.Sprintf("Error converting %s '%s'", kind.Singular(), nameKey.Value),
					core.WithPath(Path(kind, nameKey.Value)...),
					core.WithLocation(loc)))
				continue
			}
			r.Add(kind, nameKey.Value, raw, WithLocation(loc))
		}
	}
	return r
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func nodeLocation(filename string, n *yaml.Node) core.Location {
	return core.Location{File: filename, Line: n.Line, Column: n.Column}
}
