package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
)

var (
	// ErrMalformedReference is returned for references that are not of the
	// form `module:name`.
	ErrMalformedReference = errors.New("malformed function reference")
	// ErrModuleNotFound is returned when nothing is registered in the module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrAttributeNotFound is returned when the module exists but does not
	// register the name.
	ErrAttributeNotFound = errors.New("attribute not found")
)

var referenceRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*):([a-zA-Z_][a-zA-Z0-9_]*)$`)

// Module is implemented by packages that contribute functions.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered values, grouped by module.
type Registry struct {
	modules map[string]map[string]any
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{modules: make(map[string]map[string]any)}
}

// ParseReference splits a `module:name` reference.
func ParseReference(ref string) (module, name string, err error) {
	m := referenceRegex.FindStringSubmatch(ref)
	if m == nil {
		return "", "", fmt.Errorf("%w '%s': expected 'module:name'", ErrMalformedReference, ref)
	}
	return m[1], m[2], nil
}

// Register stores value under ref. It panics on a malformed reference or
// when ref is already registered, both of which are programming errors.
func (r *Registry) Register(ref string, value any) {
	module, name, err := ParseReference(ref)
	if err != nil {
		panic(err.Error())
	}
	if value == nil {
		panic(fmt.Sprintf("function reference '%s' registered with a nil value", ref))
	}
	attrs, ok := r.modules[module]
	if !ok {
		attrs = make(map[string]any)
		r.modules[module] = attrs
	}
	if _, exists := attrs[name]; exists {
		panic(fmt.Sprintf("function reference '%s' already registered", ref))
	}
	slog.Debug("Registering function reference.", "reference", ref, "type", fmt.Sprintf("%T", value))
	attrs[name] = value
}

// Use registers every module.
func (r *Registry) Use(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup resolves ref. The returned error wraps ErrMalformedReference,
// ErrModuleNotFound or ErrAttributeNotFound.
func (r *Registry) Lookup(ref string) (any, error) {
	module, name, err := ParseReference(ref)
	if err != nil {
		return nil, err
	}
	attrs, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: no module named '%s'", ErrModuleNotFound, module)
	}
	value, ok := attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: module '%s' has no attribute '%s'", ErrAttributeNotFound, module, name)
	}
	return value, nil
}

// References returns every registered reference, sorted.
func (r *Registry) References() []string {
	var refs []string
	for module, attrs := range r.modules {
		for name := range attrs {
			refs = append(refs, module+":"+name)
		}
	}
	sort.Strings(refs)
	return refs
}
