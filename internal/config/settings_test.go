package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		env     map[string]string
		want    Settings
		wantErr string
	}{
		{
			name: "defaults without a file",
			want: Defaults(),
		},
		{
			name: "file values",
			yaml: "log:\n  level: DEBUG\n  format: json\nmetrics:\n  textfile: /tmp/bundlefn.prom\n",
			want: Settings{
				Log:       LogSettings{Level: "debug", Format: "json"},
				Metrics:   MetricsSettings{Textfile: "/tmp/bundlefn.prom"},
				Locations: LocationSettings{Relativize: "."},
			},
		},
		{
			name: "environment overrides the file",
			yaml: "log:\n  level: debug\n",
			env: map[string]string{
				"TESTBFN_LOG__LEVEL":            "warn",
				"TESTBFN_LOCATIONS__RELATIVIZE": "",
			},
			want: Settings{
				Log: LogSettings{Level: "warn", Format: "text"},
			},
		},
		{
			name:    "invalid level",
			yaml:    "log:\n  level: verbose\n",
			wantErr: "invalid log level 'verbose'",
		},
		{
			name:    "malformed file",
			yaml:    "log: [",
			wantErr: "failed to read settings",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			path := filepath.Join(t.TempDir(), DefaultFile)
			if tc.yaml != "" {
				require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o600))
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			// --- Act ---
			got, err := load(path, "TESTBFN_")

			// --- Assert ---
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("settings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	got, err := load("", "TESTBFN_EMPTY_")
	require.NoError(t, err)
	require.Equal(t, Defaults(), got)
}
