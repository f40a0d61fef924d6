package resources

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/specialistvlad/bundlefn/core"
)

// ResourceMutator pairs a resource Kind with a user function that transforms
// resources of that Kind. Build one with Mutator or MutatorWithBundle.
type ResourceMutator struct {
	kind     Kind
	name     string
	location *core.Location
	apply    func(core.Bundle, core.Resource) (core.Resource, error)
}

// MutatorOption customises a ResourceMutator.
type MutatorOption func(*ResourceMutator)

// WithMutatorName overrides the name derived from the function.
func WithMutatorName(name string) MutatorOption {
	return func(m *ResourceMutator) {
		m.name = name
	}
}

// Mutator wraps a function that receives one resource and returns the
// resource to keep. Returning a different pointer replaces the resource.
//
//	var AddTags = resources.Mutator(func(job *jobs.Job) (*jobs.Job, error) {
//		job.Tags = map[string]string{"team": "data"}
//		return job, nil
//	})
//
// It panics when T is not a resource variant, which is a programming error.
func Mutator[T core.Resource](fn func(T) (T, error), opts ...MutatorOption) ResourceMutator {
	return newMutator[T](fn, func(_ core.Bundle, r T) (T, error) { return fn(r) }, opts)
}

// MutatorWithBundle is like Mutator for functions that also need the
// read-only Bundle.
func MutatorWithBundle[T core.Resource](fn func(core.Bundle, T) (T, error), opts ...MutatorOption) ResourceMutator {
	return newMutator[T](fn, fn, opts)
}

func newMutator[T core.Resource](declared any, fn func(core.Bundle, T) (T, error), opts []MutatorOption) ResourceMutator {
	kind, ok := kindOfType(reflect.TypeFor[T]())
	if !ok {
		panic(fmt.Sprintf("resources: %s is not a resource type", reflect.TypeFor[T]()))
	}

	m := ResourceMutator{kind: kind, name: core.FuncName(declared)}
	if loc, ok := core.LocationFromFunc(declared); ok {
		m.location = &loc
	}
	m.apply = func(b core.Bundle, in core.Resource) (core.Resource, error) {
		typed, ok := in.(T)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %T", reflect.TypeFor[T](), in)
		}
		out, err := fn(b, typed)
		if err != nil {
			return nil, err
		}
		if rv := reflect.ValueOf(out); !rv.IsValid() || rv.IsNil() {
			return nil, errNilResult
		}
		return out, nil
	}

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

var errNilResult = errors.New("mutator returned nil")

// IsZero reports whether m was declared without Mutator or
// MutatorWithBundle.
func (m ResourceMutator) IsZero() bool {
	return m.apply == nil
}

// Kind returns the resource variant the mutator applies to.
func (m ResourceMutator) Kind() Kind {
	return m.kind
}

// Name returns the mutator name used in diagnostics.
func (m ResourceMutator) Name() string {
	return m.name
}

// Location returns the declaration site of the mutator function, if known.
func (m ResourceMutator) Location() (core.Location, bool) {
	if m.location == nil {
		return core.Location{}, false
	}
	return *m.location, true
}

// Apply runs the mutator on a single resource.
func (m ResourceMutator) Apply(b core.Bundle, r core.Resource) (core.Resource, error) {
	if m.apply == nil {
		return nil, errors.New("mutator is not initialised")
	}
	return m.apply(b, r)
}
