package app

import (
	"errors"

	"github.com/specialistvlad/bundlefn/internal/config"
	"github.com/specialistvlad/bundlefn/internal/driver"
)

// Config holds everything an App needs for one invocation.
type Config struct {
	Phase           driver.Phase
	InputPath       string
	OutputPath      string
	DiagnosticsPath string
	LocationsPath   string // optional

	// LogLevel and LogFormat override the settings file when set.
	LogLevel  string
	LogFormat string

	// SettingsPath is the runtime settings file. Empty skips it.
	SettingsPath string
	// UnknownArgs are flags this version does not understand. They are
	// reported as a warning once the logger is up.
	UnknownArgs []string
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if _, err := driver.ParsePhase(string(cfg.Phase)); err != nil {
		errs = append(errs, err)
	}
	if cfg.InputPath == "" {
		errs = append(errs, errors.New("--input is required"))
	}
	if cfg.OutputPath == "" {
		errs = append(errs, errors.New("--output is required"))
	}
	if cfg.DiagnosticsPath == "" {
		errs = append(errs, errors.New("--diagnostics is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// settings loads the runtime settings and applies the command-line
// overrides. The returned settings are always usable: an unreadable file
// yields the defaults and invalid log settings are reset, with the cause
// reported in the error.
func (c *Config) settings() (config.Settings, error) {
	s, err := config.Load(c.SettingsPath)
	if err != nil {
		s = config.Defaults()
	}
	if c.LogLevel != "" {
		s.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		s.Log.Format = c.LogFormat
	}
	if verr := s.Validate(); verr != nil {
		s.Log = config.Defaults().Log
		err = errors.Join(err, verr)
	}
	return s, err
}
