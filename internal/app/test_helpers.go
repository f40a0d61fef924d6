package app

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/bundlefn/internal/driver"
	"github.com/specialistvlad/bundlefn/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest writes input to a temporary directory and creates an App whose
// file flags point into it. Settings come only from the environment.
func SetupAppTest(t *testing.T, phase driver.Phase, input string, modules ...registry.Module) (*App, *Config, *SafeBuffer) {
	t.Helper()

	dir := t.TempDir()
	cfg := &Config{
		Phase:           phase,
		InputPath:       filepath.Join(dir, "input.json"),
		OutputPath:      filepath.Join(dir, "output.json"),
		DiagnosticsPath: filepath.Join(dir, "diagnostics.json"),
		LocationsPath:   filepath.Join(dir, "locations.json"),
		LogLevel:        "debug",
	}
	if err := os.WriteFile(cfg.InputPath, []byte(input), 0o600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	logBuffer := &SafeBuffer{}
	prevLogger := slog.Default()
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		slog.SetDefault(prevLogger)
		if os.Getenv("BUNDLEFN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, cfg, logBuffer
}
