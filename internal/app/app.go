package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/config"
	"github.com/specialistvlad/bundlefn/internal/ctxlog"
	"github.com/specialistvlad/bundlefn/internal/driver"
	"github.com/specialistvlad/bundlefn/internal/telemetry"
	"github.com/specialistvlad/bundlefn/registry"
)

// App encapsulates the dependencies of one invocation.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	metrics  *telemetry.Metrics
	settings config.Settings
	config   *Config
}

// NewApp creates an App. outW receives logs and rendered diagnostics; the
// orchestrator reads stdout for nothing, so this is normally stderr.
//
// Broken runtime settings never stop a run: the affected values fall back
// to their defaults and a warning is logged. The logger also becomes the
// slog default, so user functions that log through slog share its level and
// format.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	settings, settingsErr := cfg.settings()
	logger := newLogger(settings.Log.Level, settings.Log.Format, outW)
	slog.SetDefault(logger)
	if settingsErr != nil {
		logger.Warn("Falling back to default settings.", "path", cfg.SettingsPath, "error", settingsErr)
	}
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	reg.Use(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "references", reg.References())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		metrics:  telemetry.New(),
		settings: settings,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run executes the configured phase and returns the process exit code.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "phase", a.config.Phase)
	if len(a.config.UnknownArgs) > 0 {
		a.logger.Warn("Ignoring unrecognized arguments.", "args", a.config.UnknownArgs)
	}

	base, err := a.relativizeBase()
	if err != nil {
		a.logger.Warn("Source locations will not be relativized.", "error", err)
	}

	start := time.Now()
	result, runErr := driver.New(a.registry).Run(ctx, driver.Options{
		Phase:           a.config.Phase,
		InputPath:       a.config.InputPath,
		OutputPath:      a.config.OutputPath,
		DiagnosticsPath: a.config.DiagnosticsPath,
		LocationsPath:   a.config.LocationsPath,
		RelativizeBase:  base,
	})
	elapsed := time.Since(start)

	if err := a.renderDiagnostics(result.Diagnostics); err != nil {
		a.logger.Warn("Failed to render diagnostics.", "error", err)
	}
	a.recordMetrics(result, elapsed)

	if runErr != nil {
		return result.ExitCode, runErr
	}
	a.logger.Info("Phase finished.",
		"phase", a.config.Phase,
		"exit_code", result.ExitCode,
		"resources", result.Resources,
		"functions", result.Functions,
		"duration", elapsed,
	)
	return result.ExitCode, nil
}

func (a *App) relativizeBase() (string, error) {
	base := a.settings.Locations.Relativize
	if base == "" {
		return "", nil
	}
	return filepath.Abs(base)
}

// renderDiagnostics writes the diagnostics in the HCL text format, which
// points at file and line where a location is known.
func (a *App) renderDiagnostics(diags core.Diagnostics) error {
	if diags.Len() == 0 {
		return nil
	}
	wr := hcl.NewDiagnosticTextWriter(a.outW, nil, 0, false)
	return wr.WriteDiagnostics(diags.ToHCL())
}

func (a *App) recordMetrics(result driver.Result, elapsed time.Duration) {
	run := telemetry.Run{
		Phase:     string(a.config.Phase),
		ExitCode:  result.ExitCode,
		Duration:  elapsed,
		Resources: result.Resources,
		Functions: result.Functions,
	}
	for _, d := range result.Diagnostics.Items() {
		switch d.Severity {
		case core.SeverityError:
			run.Errors++
		case core.SeverityWarning:
			run.Warnings++
		}
	}
	a.metrics.Observe(run)

	path := a.settings.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.logger.Warn("Failed to export metrics.", "error", err)
		return
	}
	a.logger.Debug("Metrics exported.", "path", path)
}

// DefaultSettingsPath returns the settings file in the working directory.
func DefaultSettingsPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return config.DefaultFile
	}
	return filepath.Join(wd, config.DefaultFile)
}
