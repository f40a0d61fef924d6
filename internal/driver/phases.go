package driver

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/ctxlog"
	"github.com/specialistvlad/bundlefn/internal/guard"
	"github.com/specialistvlad/bundlefn/internal/wire"
	"github.com/specialistvlad/bundlefn/resources"
	"github.com/zclconf/go-cty/cty"
)

// phaseOutcome is what a phase hands over to the output step.
type phaseOutcome struct {
	diags     core.Diagnostics
	produced  cty.Value
	locations map[string]core.Location
	functions int
	count     int
}

func (r *run) execute(ctx context.Context, cfg wire.Config) phaseOutcome {
	logger := ctxlog.FromContext(ctx)

	vars, err := cfg.Variables()
	if err != nil {
		return phaseOutcome{diags: core.FromError(err, "Failed to read variables", core.WithPath("variables"))}
	}
	bundle := core.NewBundle(cfg.Target(), vars)

	if cfg.HasLegacyPlugins() {
		return phaseOutcome{diags: core.CreateError(
			"The 'experimental.plugins' setting is no longer supported",
			core.WithPath("experimental", "plugins"),
			core.WithDetail("Resource loaders and mutators are now listed under 'experimental.functions.resources' and 'experimental.functions.mutators'. Remove 'experimental.plugins' to continue."),
		)}
	}

	r.enter(ctx, StateLoadingReferences)
	refs, err := cfg.FunctionReferences(r.phase.section())
	if err != nil {
		return phaseOutcome{diags: core.FromError(err, "Invalid function references", core.WithPath(referencePath(r.phase)...))}
	}
	logger.Debug("Resolving function references.", "phase", r.phase, "references", refs)

	switch r.phase {
	case PhaseLoadResources:
		loaders, diags := r.loadLoaders(refs)
		if diags.HasError() {
			return phaseOutcome{diags: diags}
		}
		r.enter(ctx, StateExecutingPhase)
		res := runLoaders(ctx, bundle, loaders)
		return finish(diags.Extend(res.Diagnostics()), res, len(loaders))

	default:
		mutators, diags := r.loadMutators(refs)
		if diags.HasError() {
			return phaseOutcome{diags: diags}
		}
		r.enter(ctx, StateExecutingPhase)
		state := cfg.Resources()
		res := parseResources(ctx, state)
		diags = diags.Extend(res.Diagnostics())
		if diags.HasError() {
			return phaseOutcome{diags: diags}
		}
		diags = diags.Extend(resources.ApplyMutators(ctx, bundle.WithResourceState(state), res, mutators))
		return finish(diags, res, len(mutators))
	}
}

// runLoaders calls every loader in order and merges their output into a
// fresh collection. A failing loader does not stop the others.
func runLoaders(ctx context.Context, bundle core.Bundle, loaders []loader) *resources.Resources {
	logger := ctxlog.FromContext(ctx)
	merged := resources.New()
	for _, l := range loaders {
		logger.Debug("Running resource loader.", "reference", l.ref)
		var out *resources.Resources
		err := guard.Call(func() error {
			var err error
			out, err = l.call(bundle)
			return err
		})
		if err != nil {
			merged.AddDiagnostics(core.FromError(err, fmt.Sprintf("Failed to load resources from '%s'", l.ref)))
			continue
		}
		if out == nil {
			logger.Debug("Resource loader returned no resources.", "reference", l.ref)
			continue
		}
		merged.AddResources(out)
	}
	return merged
}

// parseResources reads the resources already present in the configuration.
// Types this runtime does not model are left alone.
func parseResources(ctx context.Context, section cty.Value) *resources.Resources {
	logger := ctxlog.FromContext(ctx)
	res := resources.New()
	if section.IsNull() || !section.Type().IsObjectType() {
		return res
	}
	all := section.AsValueMap()
	for _, plural := range sortedKeys(all) {
		byName := all[plural]
		kind, ok := resources.KindFromPlural(plural)
		if !ok {
			logger.Debug("Skipping unsupported resource type.", "type", plural)
			continue
		}
		if byName.IsNull() || !(byName.Type().IsObjectType() || byName.Type().IsMapType()) {
			res.AddDiagnosticError(fmt.Sprintf("Resources of type '%s' must be an object", plural), core.WithPath("resources", plural))
			continue
		}
		items := byName.AsValueMap()
		for _, name := range sortedKeys(items) {
			res.Add(kind, name, items[name], resources.WithoutLocation())
		}
	}
	return res
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func finish(diags core.Diagnostics, res *resources.Resources, functions int) phaseOutcome {
	if diags.HasError() {
		return phaseOutcome{diags: diags, functions: functions}
	}
	produced, err := res.AsValue()
	if err != nil {
		return phaseOutcome{diags: diags.Extend(core.FromError(err, "Failed to encode resources")), functions: functions}
	}
	return phaseOutcome{
		diags:     diags,
		produced:  produced,
		locations: res.Locations(),
		functions: functions,
		count:     res.Len(),
	}
}
