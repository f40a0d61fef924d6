package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultFile is looked up in the working directory.
	DefaultFile = "bundlefn.yml"
	// EnvPrefix marks environment variables that carry settings.
	EnvPrefix = "BUNDLEFN_"
)

type LogSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsSettings struct {
	// Textfile is a path the run metrics are written to in the Prometheus
	// text format. Empty disables the export.
	Textfile string `koanf:"textfile"`
}

type LocationSettings struct {
	// Relativize is the base directory for reported file paths. "." means
	// the working directory; empty leaves paths absolute.
	Relativize string `koanf:"relativize"`
}

// Settings are the runtime settings.
type Settings struct {
	Log       LogSettings      `koanf:"log"`
	Metrics   MetricsSettings  `koanf:"metrics"`
	Locations LocationSettings `koanf:"locations"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Log:       LogSettings{Level: "info", Format: "text"},
		Locations: LocationSettings{Relativize: "."},
	}
}

// Load merges the YAML file at path (if it exists) with the environment. An
// empty path skips the file.
func Load(path string) (Settings, error) {
	return load(path, EnvPrefix)
}

func load(path, prefix string) (Settings, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to read settings from '%s': %w", path, err)
		}
	}

	envProvider := env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Settings{}, fmt.Errorf("failed to read settings from the environment: %w", err)
	}

	settings := Defaults()
	if err := k.Unmarshal("", &settings); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	settings.Log.Level = strings.ToLower(settings.Log.Level)
	settings.Log.Format = strings.ToLower(settings.Log.Format)
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks the enumerated settings.
func (s Settings) Validate() error {
	var errs []error
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level '%s': must be 'debug', 'info', 'warn', or 'error'", s.Log.Level))
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", s.Log.Format))
	}
	return errors.Join(errs...)
}
