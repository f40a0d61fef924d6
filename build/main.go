// Package build is the entry point of a user program. A program registers
// its loaders and mutators in modules and hands them to Main; the resulting
// binary is what the orchestrator starts once per phase.
//
//	func main() {
//		build.Main(mymutators.Module{})
//	}
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/bundlefn/internal/app"
	"github.com/specialistvlad/bundlefn/internal/cli"
	"github.com/specialistvlad/bundlefn/registry"
)

// Main runs one phase with the given modules and exits the process.
func Main(modules ...registry.Module) {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	code, err := Run(context.Background(), os.Stderr, os.Args[1:], modules...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

// Run parses args and runs one phase, returning the exit code. Logs,
// usage text and rendered diagnostics go to outW.
func Run(ctx context.Context, outW io.Writer, args []string, modules ...registry.Module) (int, error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code, err
		}
		return 2, err
	}
	if shouldExit {
		return 0, nil
	}

	return app.NewApp(outW, appConfig, modules...).Run(ctx)
}
