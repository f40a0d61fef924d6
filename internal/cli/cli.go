package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/bundlefn/internal/app"
	"github.com/specialistvlad/bundlefn/internal/driver"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Flags this version does not define are not an error: newer orchestrators
// may pass more of them. They are collected in Config.UnknownArgs.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("bundlefn", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bundlefn - Runs user-defined resource loaders and mutators for a bundle.

Usage:
  bundlefn --phase PHASE --input PATH --output PATH --diagnostics PATH [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	phaseFlag := flagSet.String("phase", "", "Phase to run. Options: 'load_resources' or 'apply_mutators'.")
	inputFlag := flagSet.String("input", "", "Path to the input configuration (JSON).")
	outputFlag := flagSet.String("output", "", "Path the output configuration is written to.")
	diagnosticsFlag := flagSet.String("diagnostics", "", "Path the diagnostics (NDJSON) are written to.")
	locationsFlag := flagSet.String("locations", "", "Optional path the resource locations (NDJSON) are written to.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'. Overrides the settings file.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'. Overrides the settings file.")
	settingsFlag := flagSet.String("settings", app.DefaultSettingsPath(), "Path to the runtime settings file. A missing file is ignored.")

	known, unknown := splitArgs(flagSet, args)
	if err := flagSet.Parse(known); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	unknown = append(unknown, flagSet.Args()...)
	slog.Debug("Arguments parsed successfully.", "unknown", unknown)

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "", "text", "json":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Phase:           driver.Phase(*phaseFlag),
		InputPath:       *inputFlag,
		OutputPath:      *outputFlag,
		DiagnosticsPath: *diagnosticsFlag,
		LocationsPath:   *locationsFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		SettingsPath:    *settingsFlag,
		UnknownArgs:     unknown,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// splitArgs separates the flags defined on fs from everything else. An
// unknown flag written as `--name value` takes the following argument with
// it, unless that argument is itself a flag.
func splitArgs(fs *flag.FlagSet, args []string) (known, unknown []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			unknown = append(unknown, args[i+1:]...)
			break
		}
		name, hasValue, ok := flagName(arg)
		if !ok {
			unknown = append(unknown, arg)
			continue
		}
		if name == "h" || name == "help" || fs.Lookup(name) != nil {
			known = append(known, arg)
			if !hasValue && fs.Lookup(name) != nil && i+1 < len(args) {
				i++
				known = append(known, args[i])
			}
			continue
		}
		unknown = append(unknown, arg)
		if !hasValue && i+1 < len(args) {
			if _, _, isFlag := flagName(args[i+1]); !isFlag {
				i++
				unknown = append(unknown, args[i])
			}
		}
	}
	return known, unknown
}

// flagName returns the name of a `-name`, `--name` or `--name=value`
// argument.
func flagName(arg string) (name string, hasValue, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false, false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if name == "" || name[0] == '-' || name[0] == '=' {
		return "", false, false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}
