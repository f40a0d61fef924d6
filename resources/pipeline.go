package resources

import (
	"context"
	"fmt"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/ctxlog"
	"github.com/specialistvlad/bundlefn/internal/guard"
)

// ApplyMutators runs mutators over res. Kinds are processed in variant order,
// resources in insertion order, and mutators of the resource's Kind in the
// given order.
//
// A mutator that fails, panics or returns nil produces one error at the
// resource's path and stops the remaining work for that Kind. Other Kinds are
// still processed. A mutator that returns a new resource replaces the stored
// one, and the resource's location then points at the mutator.
func ApplyMutators(ctx context.Context, bundle core.Bundle, res *Resources, mutators []ResourceMutator) core.Diagnostics {
	var diags core.Diagnostics
	for _, kind := range Kinds() {
		var forKind []ResourceMutator
		for _, m := range mutators {
			if m.kind == kind {
				forKind = append(forKind, m)
			}
		}
		if len(forKind) == 0 {
			continue
		}
		diags = diags.Extend(applyKind(ctx, bundle, res, kind, forKind))
	}
	return diags
}

func applyKind(ctx context.Context, bundle core.Bundle, res *Resources, kind Kind, mutators []ResourceMutator) core.Diagnostics {
	logger := ctxlog.FromContext(ctx)

	for _, name := range res.Names(kind) {
		for _, m := range mutators {
			current, _ := res.Get(kind, name)
			logger.Debug("Applying mutator.", "mutator", m.name, "kind", kind.Plural(), "resource", name)

			var out core.Resource
			err := guard.Call(func() error {
				var err error
				out, err = m.Apply(bundle, current)
				return err
			})
			if err != nil {
				logger.Debug("Mutator failed, skipping the remaining mutators of this kind.", "mutator", m.name, "kind", kind.Plural(), "error", err)
				opts := []core.DiagnosticOption{core.WithPath(Path(kind, name)...)}
				if loc, ok := m.Location(); ok {
					opts = append(opts, core.WithLocation(loc))
				}
				return core.FromError(err, fmt.Sprintf("Failed to apply '%s' mutator: %s", m.name, err), opts...)
			}

			if out != current {
				res.replace(kind, name, out)
				if loc, ok := m.Location(); ok {
					res.setLocation(pathKey(kind, name), loc)
				}
			}
		}
	}
	return core.Diagnostics{}
}
