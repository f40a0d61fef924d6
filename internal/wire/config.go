package wire

import (
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Config is the configuration document.
type Config struct {
	root cty.Value
}

// NewConfig wraps an object value.
func NewConfig(root cty.Value) (Config, error) {
	if root.IsNull() || !root.Type().IsObjectType() {
		return Config{}, fmt.Errorf("configuration must be a JSON object, got %s", root.Type().FriendlyName())
	}
	return Config{root: root}, nil
}

// ReadConfig reads and parses the configuration file at path.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses a JSON configuration document.
func ParseConfig(data []byte) (Config, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return Config{}, err
	}
	root, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return Config{}, err
	}
	return NewConfig(root)
}

// Marshal renders the configuration as JSON.
func (c Config) Marshal() ([]byte, error) {
	return ctyjson.Marshal(c.root, c.root.Type())
}

// WriteConfig writes the configuration to path.
func WriteConfig(path string, c Config) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

// Value returns the whole document.
func (c Config) Value() cty.Value {
	return c.root
}

// Get returns the value at path, or a null value when any step is missing.
func (c Config) Get(path ...string) cty.Value {
	v := c.root
	for _, step := range path {
		if v.IsNull() || !v.IsKnown() {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		ty := v.Type()
		switch {
		case ty.IsObjectType():
			if !ty.HasAttribute(step) {
				return cty.NullVal(cty.DynamicPseudoType)
			}
			v = v.GetAttr(step)
		case ty.IsMapType():
			key := cty.StringVal(step)
			if !v.HasIndex(key).True() {
				return cty.NullVal(cty.DynamicPseudoType)
			}
			v = v.Index(key)
		default:
			return cty.NullVal(cty.DynamicPseudoType)
		}
	}
	return v
}

// Target returns `bundle.target`, or "" when it is not a string.
func (c Config) Target() string {
	v := c.Get("bundle", "target")
	if v.IsNull() || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}

// Variables returns the resolved value of every entry of the `variables`
// section, i.e. `variables.<name>.value`.
func (c Config) Variables() (map[string]cty.Value, error) {
	section := c.Get("variables")
	vars := make(map[string]cty.Value)
	if section.IsNull() {
		return vars, nil
	}
	if !section.Type().IsObjectType() && !section.Type().IsMapType() {
		return nil, fmt.Errorf("'variables' must be an object, got %s", section.Type().FriendlyName())
	}
	for name, def := range section.AsValueMap() {
		if def.IsNull() || !def.Type().IsObjectType() {
			return nil, fmt.Errorf("variable '%s' must be an object", name)
		}
		if def.Type().HasAttribute("value") {
			vars[name] = def.GetAttr("value")
		} else {
			vars[name] = cty.NullVal(cty.DynamicPseudoType)
		}
	}
	return vars, nil
}

// Resources returns the `resources` section, or an empty object.
func (c Config) Resources() cty.Value {
	v := c.Get("resources")
	if v.IsNull() {
		return cty.EmptyObjectVal
	}
	return v
}

// FunctionReferences returns the references listed under
// `experimental.functions.<section>`.
func (c Config) FunctionReferences(section string) ([]string, error) {
	v := c.Get("experimental", "functions", section)
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("'experimental.functions.%s' must be a list of strings", section)
	}
	var refs []string
	it := v.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		if elem.IsNull() || elem.Type() != cty.String {
			return nil, fmt.Errorf("'experimental.functions.%s' must be a list of strings", section)
		}
		refs = append(refs, elem.AsString())
	}
	return refs, nil
}

// HasLegacyPlugins reports whether the retired `experimental.plugins`
// mechanism is configured with a non-empty value. false, 0 and "" count as
// empty, like null and empty collections.
func (c Config) HasLegacyPlugins() bool {
	v := c.Get("experimental", "plugins")
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType(), ty.IsMapType(), ty.IsTupleType(), ty.IsListType(), ty.IsSetType():
		return v.LengthInt() > 0
	case ty == cty.String:
		return v.AsString() != ""
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return !v.RawEquals(cty.Zero)
	}
	return true
}

// WithResources returns a copy of c in which every `resources.<plural>.<name>`
// present in res is replaced. Other keys are left untouched.
func (c Config) WithResources(res cty.Value) Config {
	if res.IsNull() || res.LengthInt() == 0 {
		return c
	}
	root := c.root
	for plural, byName := range res.AsValueMap() {
		for name, value := range byName.AsValueMap() {
			root = setPath(root, []string{"resources", plural, name}, value)
		}
	}
	return Config{root: root}
}

func setPath(obj cty.Value, path []string, value cty.Value) cty.Value {
	attrs := make(map[string]cty.Value)
	if !obj.IsNull() && (obj.Type().IsObjectType() || obj.Type().IsMapType()) {
		for k, v := range obj.AsValueMap() {
			attrs[k] = v
		}
	}
	if len(path) == 1 {
		attrs[path[0]] = value
	} else {
		child, ok := attrs[path[0]]
		if !ok {
			child = cty.NullVal(cty.DynamicPseudoType)
		}
		attrs[path[0]] = setPath(child, path[1:], value)
	}
	return cty.ObjectVal(attrs)
}
