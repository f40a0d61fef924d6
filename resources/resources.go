package resources

import (
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"strings"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/jobs"
	"github.com/specialistvlad/bundlefn/pipelines"
	"github.com/zclconf/go-cty/cty"
)

// Resources is an insertion-ordered collection of typed resources, one
// sub-collection per Kind, with their source locations and the diagnostics
// produced while building it. The zero value is an empty collection.
type Resources struct {
	jobs        collection[*jobs.Job]
	pipelines   collection[*pipelines.Pipeline]
	locations   map[string]core.Location
	diagnostics core.Diagnostics
}

// New creates an empty collection.
func New() *Resources {
	return &Resources{locations: make(map[string]core.Location)}
}

// AddOption customises AddResource, AddJob, AddPipeline and Add.
type AddOption func(*addOptions)

type addOptions struct {
	location   *core.Location
	noLocation bool
}

// WithLocation records loc as the declaration site of the resource instead of
// the caller of the add method.
func WithLocation(loc core.Location) AddOption {
	return func(o *addOptions) {
		o.location = &loc
	}
}

// WithoutLocation records no location for the resource. It is used for
// resources read back from configuration, whose origin is not known here.
func WithoutLocation() AddOption {
	return func(o *addOptions) {
		o.location = nil
		o.noLocation = true
	}
}

// AddResource adds a typed resource, dispatching on its Kind.
func (r *Resources) AddResource(name string, resource core.Resource, opts ...AddOption) {
	kind, ok := KindOf(resource)
	if !ok {
		r.diagnostics = r.diagnostics.Extend(core.CreateError(
			fmt.Sprintf("Unsupported resource type %T for '%s'", resource, name),
		))
		return
	}
	r.add(kind, name, resource, opts)
}

// AddJob adds a job. job may be a *jobs.Job or any value that transforms into
// one, such as a decoded JSON mapping.
func (r *Resources) AddJob(name string, job any, opts ...AddOption) {
	r.add(KindJob, name, job, opts)
}

// AddPipeline adds a pipeline. pipeline may be a *pipelines.Pipeline or any
// value that transforms into one.
func (r *Resources) AddPipeline(name string, pipeline any, opts ...AddOption) {
	r.add(KindPipeline, name, pipeline, opts)
}

// Add adds a resource of the given Kind from a typed or untyped value.
func (r *Resources) Add(kind Kind, name string, value any, opts ...AddOption) {
	r.add(kind, name, value, opts)
}

func (r *Resources) add(kind Kind, name string, value any, opts []AddOption) {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.location == nil && !o.noLocation {
		if loc, ok := callerLocation(); ok {
			o.location = &loc
		}
	}

	diagOpts := []core.DiagnosticOption{core.WithPath(Path(kind, name)...)}
	if o.location != nil {
		diagOpts = append(diagOpts, core.WithLocation(*o.location))
	}

	resource, err := convert(kind, value)
	if err != nil {
		r.diagnostics = r.diagnostics.Extend(core.FromError(err,
			fmt.Sprintf("Error converting %s '%s'", kind.Singular(), name), diagOpts...))
		return
	}

	if !r.put(kind, name, resource) {
		r.diagnostics = r.diagnostics.Extend(duplicate(kind, name, diagOpts...))
		return
	}
	if o.location != nil {
		r.setLocation(pathKey(kind, name), *o.location)
	}
}

func duplicate(kind Kind, name string, opts ...core.DiagnosticOption) core.Diagnostics {
	return core.CreateError(
		fmt.Sprintf("Duplicate resource name '%s' for a %s. Resource names must be unique.", name, kind.Singular()),
		opts...,
	)
}

func convert(kind Kind, value any) (core.Resource, error) {
	switch kind {
	case KindJob:
		job, err := jobs.FromValue(value)
		if err == nil && job == nil {
			err = fmt.Errorf("a job must not be null")
		}
		return job, err
	case KindPipeline:
		pipeline, err := pipelines.FromValue(value)
		if err == nil && pipeline == nil {
			err = fmt.Errorf("a pipeline must not be null")
		}
		return pipeline, err
	}
	return nil, fmt.Errorf("unknown resource kind %d", int(kind))
}

// put stores resource unless the name is already taken for its kind.
func (r *Resources) put(kind Kind, name string, resource core.Resource) bool {
	switch kind {
	case KindJob:
		return r.jobs.add(name, resource.(*jobs.Job))
	case KindPipeline:
		return r.pipelines.add(name, resource.(*pipelines.Pipeline))
	}
	return false
}

func (r *Resources) replace(kind Kind, name string, resource core.Resource) {
	switch kind {
	case KindJob:
		r.jobs.replace(name, resource.(*jobs.Job))
	case KindPipeline:
		r.pipelines.replace(name, resource.(*pipelines.Pipeline))
	}
}

// AddResources merges other into r. Resources already present in r win, and
// every rejected duplicate from other is reported as an error.
func (r *Resources) AddResources(other *Resources) {
	r.diagnostics = r.diagnostics.Extend(other.diagnostics)

	rejected := make(map[string]bool)
	for _, kind := range Kinds() {
		for _, name := range other.Names(kind) {
			key := pathKey(kind, name)
			resource, _ := other.Get(kind, name)
			if r.put(kind, name, resource) {
				continue
			}
			rejected[key] = true
			opts := []core.DiagnosticOption{core.WithPath(Path(kind, name)...)}
			if loc, ok := other.locations[key]; ok {
				opts = append(opts, core.WithLocation(loc))
			}
			r.diagnostics = r.diagnostics.Extend(duplicate(kind, name, opts...))
		}
	}

	for key, loc := range other.locations {
		if _, exists := r.locations[key]; exists || rejected[key] {
			continue
		}
		r.setLocation(key, loc)
	}
}

// AddLocation records the source location of the configuration value at path.
func (r *Resources) AddLocation(path []string, loc core.Location) {
	r.setLocation(strings.Join(path, "."), loc)
}

func (r *Resources) setLocation(key string, loc core.Location) {
	if r.locations == nil {
		r.locations = make(map[string]core.Location)
	}
	r.locations[key] = loc
}

// AddDiagnostics appends diagnostics.
func (r *Resources) AddDiagnostics(diags core.Diagnostics) {
	r.diagnostics = r.diagnostics.Extend(diags)
}

// AddDiagnosticError appends one error.
func (r *Resources) AddDiagnosticError(summary string, opts ...core.DiagnosticOption) {
	r.diagnostics = r.diagnostics.Extend(core.CreateError(summary, opts...))
}

// AddDiagnosticWarning appends one warning.
func (r *Resources) AddDiagnosticWarning(summary string, opts ...core.DiagnosticOption) {
	r.diagnostics = r.diagnostics.Extend(core.CreateWarning(summary, opts...))
}

// Jobs returns the jobs by name.
func (r *Resources) Jobs() map[string]*jobs.Job {
	return maps.Collect(r.jobs.all())
}

// Pipelines returns the pipelines by name.
func (r *Resources) Pipelines() map[string]*pipelines.Pipeline {
	return maps.Collect(r.pipelines.all())
}

// Names returns the resource names of a Kind in insertion order.
func (r *Resources) Names(kind Kind) []string {
	switch kind {
	case KindJob:
		return append([]string(nil), r.jobs.names...)
	case KindPipeline:
		return append([]string(nil), r.pipelines.names...)
	}
	return nil
}

// Get returns one resource.
func (r *Resources) Get(kind Kind, name string) (core.Resource, bool) {
	switch kind {
	case KindJob:
		if job, ok := r.jobs.get(name); ok {
			return job, true
		}
	case KindPipeline:
		if pipeline, ok := r.pipelines.get(name); ok {
			return pipeline, true
		}
	}
	return nil, false
}

// Len returns the number of resources across all kinds.
func (r *Resources) Len() int {
	return r.jobs.len() + r.pipelines.len()
}

// Locations returns the recorded source locations keyed by dot-joined path.
func (r *Resources) Locations() map[string]core.Location {
	return maps.Clone(r.locations)
}

// Location returns the recorded source location of one resource.
func (r *Resources) Location(kind Kind, name string) (core.Location, bool) {
	loc, ok := r.locations[pathKey(kind, name)]
	return loc, ok
}

// Diagnostics returns everything reported while building the collection.
func (r *Resources) Diagnostics() core.Diagnostics {
	return r.diagnostics
}

// AsValue encodes the collection in its configuration form: an object keyed
// by plural kind and then by resource name. Kinds without resources are left
// out.
func (r *Resources) AsValue() (cty.Value, error) {
	kinds := make(map[string]cty.Value)
	for _, kind := range Kinds() {
		names := r.Names(kind)
		if len(names) == 0 {
			continue
		}
		items := make(map[string]cty.Value, len(names))
		for _, name := range names {
			resource, _ := r.Get(kind, name)
			val, err := encode(resource)
			if err != nil {
				return cty.NilVal, fmt.Errorf("encoding %s: %w", pathKey(kind, name), err)
			}
			items[name] = val
		}
		kinds[kind.Plural()] = cty.ObjectVal(items)
	}
	if len(kinds) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(kinds), nil
}

func encode(resource core.Resource) (cty.Value, error) {
	switch res := resource.(type) {
	case *jobs.Job:
		return res.AsValue()
	case *pipelines.Pipeline:
		return res.AsValue()
	}
	return cty.NilVal, fmt.Errorf("unsupported resource type %T", resource)
}

var packagePrefix = reflect.TypeFor[Resources]().PkgPath() + "."

// callerLocation returns the first stack frame outside this package, which is
// where user code asked for a resource to be added.
func callerLocation() (core.Location, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.HasPrefix(frame.Function, packagePrefix) {
			return core.Location{File: frame.File, Line: frame.Line, Column: 1}, true
		}
		if !more {
			return core.Location{}, false
		}
	}
}

// Loader is the signature of a resource loader. Loaders are registered under
// a `module:name` reference and return the resources they declare.
type Loader func(core.Bundle) (*Resources, error)
