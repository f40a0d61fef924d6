package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/registry"
	"github.com/specialistvlad/bundlefn/resources"
)

// DefaultLoaderReference is the conventional resource loader entry point.
const DefaultLoaderReference = "resources:load_resources"

const defaultLoaderExplanation = `The configuration refers to the default resource loader, but the program does not provide it.
Register a loader under that reference before starting the runtime:

    func loadResources(bundle core.Bundle) (*resources.Resources, error) {
        r := resources.New()
        // r.AddJob(...)
        return r, nil
    }

    registry.Register("resources:load_resources", resources.Loader(loadResources))

or remove it from 'experimental.functions.resources'.`

type loader struct {
	ref  string
	call resources.Loader
}

// asLoader accepts the supported loader signatures.
func asLoader(v any) (resources.Loader, bool) {
	switch fn := v.(type) {
	case resources.Loader:
		return fn, fn != nil
	case func(core.Bundle) (*resources.Resources, error):
		return fn, fn != nil
	case func(core.Bundle) *resources.Resources:
		if fn == nil {
			return nil, false
		}
		return func(b core.Bundle) (*resources.Resources, error) { return fn(b), nil }, true
	case func() (*resources.Resources, error):
		if fn == nil {
			return nil, false
		}
		return func(core.Bundle) (*resources.Resources, error) { return fn() }, true
	case func() *resources.Resources:
		if fn == nil {
			return nil, false
		}
		return func(core.Bundle) (*resources.Resources, error) { return fn(), nil }, true
	}
	return nil, false
}

func asMutator(v any) (resources.ResourceMutator, bool) {
	switch m := v.(type) {
	case resources.ResourceMutator:
		return m, !m.IsZero()
	case *resources.ResourceMutator:
		if m != nil {
			return *m, !m.IsZero()
		}
	}
	return resources.ResourceMutator{}, false
}

func referencePath(phase Phase) []string {
	return []string{"experimental", "functions", phase.section()}
}

// lookup resolves one reference and reports import-like failures.
func lookup(reg *registry.Registry, phase Phase, ref string) (any, core.Diagnostics) {
	value, err := reg.Lookup(ref)
	if err == nil {
		return value, core.Diagnostics{}
	}

	opts := []core.DiagnosticOption{core.WithPath(referencePath(phase)...)}
	if ref == DefaultLoaderReference && !errors.Is(err, registry.ErrMalformedReference) {
		opts = append(opts, core.WithExplanation(defaultLoaderExplanation))
	}
	return nil, core.FromError(err, fmt.Sprintf("Failed to load '%s'", ref), opts...)
}

func (r *run) loadLoaders(refs []string) ([]loader, core.Diagnostics) {
	var diags core.Diagnostics
	var loaders []loader
	for _, ref := range refs {
		value, lookupDiags := lookup(r.registry, r.phase, ref)
		diags = diags.Extend(lookupDiags)
		if lookupDiags.HasError() {
			continue
		}
		fn, ok := asLoader(value)
		if !ok {
			diags = diags.Extend(core.CreateError(
				fmt.Sprintf("'%s' is not a resource loader", ref),
				core.WithPath(referencePath(r.phase)...),
				core.WithDetail(fmt.Sprintf("Got %T. A resource loader is a function with one of the signatures:\n%s", value, loaderSignatures)),
			))
			continue
		}
		loaders = append(loaders, loader{ref: ref, call: fn})
	}
	return loaders, diags
}

var loaderSignatures = strings.Join([]string{
	"  func(core.Bundle) (*resources.Resources, error)",
	"  func(core.Bundle) *resources.Resources",
	"  func() (*resources.Resources, error)",
	"  func() *resources.Resources",
}, "\n")

func (r *run) loadMutators(refs []string) ([]resources.ResourceMutator, core.Diagnostics) {
	var diags core.Diagnostics
	var mutators []resources.ResourceMutator
	for _, ref := range refs {
		value, lookupDiags := lookup(r.registry, r.phase, ref)
		diags = diags.Extend(lookupDiags)
		if lookupDiags.HasError() {
			continue
		}
		m, ok := asMutator(value)
		if !ok {
			diags = diags.Extend(core.CreateError(
				fmt.Sprintf("'%s' is not a resource mutator", ref),
				core.WithPath(referencePath(r.phase)...),
				core.WithDetail(fmt.Sprintf("Got %T. Create mutators with resources.Mutator or resources.MutatorWithBundle.", value)),
			))
			continue
		}
		mutators = append(mutators, m)
	}
	return mutators, diags
}
