package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/ctxlog"
	"github.com/specialistvlad/bundlefn/internal/wire"
	"github.com/specialistvlad/bundlefn/registry"
)

// Options are the per-run inputs, taken from the command line.
type Options struct {
	Phase           Phase
	InputPath       string
	OutputPath      string
	DiagnosticsPath string
	// LocationsPath is optional. No locations file is written when empty.
	LocationsPath string
	// RelativizeBase is the directory that absolute source paths are made
	// relative to. Paths are left as they are when empty.
	RelativizeBase string
}

func (o Options) validate() error {
	var errs []error
	if _, err := ParsePhase(string(o.Phase)); err != nil {
		errs = append(errs, err)
	}
	if o.InputPath == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if o.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if o.DiagnosticsPath == "" {
		errs = append(errs, errors.New("diagnostics path is required"))
	}
	return errors.Join(errs...)
}

// Result summarises a run.
type Result struct {
	ExitCode    int
	Diagnostics core.Diagnostics
	// Functions is the number of resolved loaders or mutators.
	Functions int
	// Resources is the number of resources written back.
	Resources int
}

// Driver runs phases against a registry of user functions.
type Driver struct {
	registry *registry.Registry
}

// New creates a Driver.
func New(reg *registry.Registry) *Driver {
	return &Driver{registry: reg}
}

// run holds the state of a single invocation.
type run struct {
	registry *registry.Registry
	phase    Phase
	state    State
}

// Run executes one phase. The returned error is reserved for invalid options
// and for files that could not be written; everything else is reported
// through the diagnostics in the Result and the diagnostics file.
func (d *Driver) Run(ctx context.Context, opts Options) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	if err := opts.validate(); err != nil {
		return Result{ExitCode: 2}, err
	}

	r := &run{registry: d.registry, phase: opts.Phase, state: StateParsingArgs}
	logger.Debug("Driver run started.", "phase", opts.Phase, "input", opts.InputPath)

	r.enter(ctx, StateParsingInput)
	raw, readErr := os.ReadFile(opts.InputPath)
	var cfg wire.Config
	var diags core.Diagnostics
	if readErr != nil {
		diags = core.FromError(readErr, "Failed to read the input configuration")
	} else if parsed, err := wire.ParseConfig(raw); err != nil {
		diags = core.FromError(err, "Failed to parse the input configuration")
	} else {
		cfg = parsed
	}

	var outcome phaseOutcome
	if !diags.HasError() {
		outcome = r.execute(ctx, cfg)
		diags = diags.Extend(outcome.diags)
	}

	r.enter(ctx, StateWritingOutput)
	result := Result{Diagnostics: diags, Functions: outcome.functions}
	var writeErr error
	if diags.HasError() {
		result.ExitCode = 1
		if raw != nil {
			writeErr = writeRaw(opts.OutputPath, raw)
		}
	} else {
		out := cfg.WithResources(outcome.produced)
		writeErr = wire.WriteConfig(opts.OutputPath, out)
		if writeErr == nil && opts.LocationsPath != "" {
			writeErr = wire.WriteLocations(opts.LocationsPath, outcome.locations, opts.RelativizeBase)
		}
		result.Resources = outcome.count
	}

	diagErr := wire.WriteDiagnostics(opts.DiagnosticsPath, diags, opts.RelativizeBase)
	r.enter(ctx, StateDone)

	if err := errors.Join(writeErr, diagErr); err != nil {
		result.ExitCode = 1
		return result, err
	}
	logger.Debug("Driver run finished.", "exit_code", result.ExitCode, "diagnostics", diags.Len())
	return result, nil
}

func writeRaw(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}
