package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	// --- Arrange ---
	m := New()

	// --- Act ---
	m.Observe(Run{Phase: "apply_mutators", ExitCode: 0, Duration: 20 * time.Millisecond, Warnings: 2, Resources: 3, Functions: 1})
	m.Observe(Run{Phase: "apply_mutators", ExitCode: 1, Duration: 5 * time.Millisecond, Errors: 1})

	// --- Assert ---
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phaseRuns.WithLabelValues("apply_mutators", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phaseRuns.WithLabelValues("apply_mutators", "1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diagnostics.WithLabelValues("apply_mutators", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.diagnostics.WithLabelValues("apply_mutators", "warning")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.resources.WithLabelValues("apply_mutators")), "the gauge reflects the last run")
	assert.Equal(t, 1, testutil.CollectAndCount(m.phaseDuration))

	expected := `
# HELP bundlefn_functions Number of loaders or mutators resolved by the last run of a phase
# TYPE bundlefn_functions gauge
bundlefn_functions{phase="apply_mutators"} 0
`
	require.NoError(t, testutil.CollectAndCompare(m.functions, strings.NewReader(expected)))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.Observe(Run{Phase: "load_resources", Resources: 4})
	path := filepath.Join(t.TempDir(), "bundlefn.prom")

	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bundlefn_resources{phase="load_resources"} 4`)
	assert.Contains(t, string(data), `bundlefn_phase_runs_total{exit_code="0",phase="load_resources"} 1`)
}

func TestMetrics_WriteTextfileError(t *testing.T) {
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "bundlefn.prom"))
	require.ErrorContains(t, err, "failed to write metrics")
}
