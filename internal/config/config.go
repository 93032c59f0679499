// Package config loads runtime settings for the automata tool.
//
// Settings are layered: built-in defaults, then an optional TOML file,
// then AUTOMATA_* environment variables. Command line flags are applied
// last by the caller.
//
//	[limits]
//	max_steps = 1000000
//	max_configurations = 1000000
//	dedupe = true
//
//	[log]
//	level = "warn"
//
//	[output]
//	format = "text"   # or "jsonl"
//	color = "auto"    # "always", "never"
//
//	[run]
//	workers = 4
//
//	[watch]
//	debounce = "200ms"
//
//	[script]
//	timeout = "2s"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/automata/internal/loader"
	"github.com/dshills/automata/internal/logging"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LimitsConfig bounds PDA and TM simulation.
type LimitsConfig struct {
	MaxSteps          int  `toml:"max_steps"`
	MaxConfigurations int  `toml:"max_configurations"`
	Dedupe            bool `toml:"dedupe"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// OutputConfig configures result writers.
type OutputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

// RunConfig configures the suite runner.
type RunConfig struct {
	Workers int `toml:"workers"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// ScriptConfig configures Lua input generators.
type ScriptConfig struct {
	Timeout Duration `toml:"timeout"`
}

// Config holds all runtime settings.
type Config struct {
	Limits LimitsConfig `toml:"limits"`
	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`
	Run    RunConfig    `toml:"run"`
	Watch  WatchConfig  `toml:"watch"`
	Script ScriptConfig `toml:"script"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxSteps:          1_000_000,
			MaxConfigurations: 1_000_000,
			Dedupe:            true,
		},
		Log:    LogConfig{Level: "warn"},
		Output: OutputConfig{Format: FormatText, Color: ColorAuto},
		Run:    RunConfig{Workers: runtime.NumCPU()},
		Watch:  WatchConfig{Debounce: Duration(200 * time.Millisecond)},
		Script: ScriptConfig{Timeout: Duration(2 * time.Second)},
	}
}

// DefaultPath returns the user configuration file path, or "" if the user
// configuration directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "automata", "config.toml")
}

// Loader builds a Config from defaults, a file and the environment.
type Loader struct {
	fs     loader.FileSystem
	lookup func(string) (string, bool)
}

// NewLoader creates a loader backed by the OS file system and environment.
func NewLoader() *Loader {
	return &Loader{fs: loader.DefaultFS(), lookup: os.LookupEnv}
}

// NewLoaderWithFS creates a loader with a custom file system and
// environment lookup. A nil lookup ignores the environment.
func NewLoaderWithFS(fsys loader.FileSystem, lookup func(string) (string, bool)) *Loader {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &Loader{fs: fsys, lookup: lookup}
}

// Load returns the merged and validated configuration. A missing file at
// path is not an error unless required is set. An empty path skips the
// file layer.
func (l *Loader) Load(path string, required bool) (*Config, error) {
	cfg, err := l.Read(path, required)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read merges defaults, the file at path and the environment without
// validating, so callers can apply further overrides before Validate.
func (l *Loader) Read(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if required {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(cfg, l.lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays a TOML document on cfg. Keys absent from the document
// keep their current values.
func decode(path string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Limits.MaxSteps <= 0 {
		return &ValidationError{Path: "limits.max_steps", Message: "must be positive", Value: c.Limits.MaxSteps}
	}
	if c.Limits.MaxConfigurations <= 0 {
		return &ValidationError{Path: "limits.max_configurations", Message: "must be positive", Value: c.Limits.MaxConfigurations}
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return &ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: c.Log.Level}
	}
	switch c.Output.Format {
	case FormatText, FormatJSONL:
	default:
		return &ValidationError{Path: "output.format", Message: "must be text or jsonl", Value: c.Output.Format}
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return &ValidationError{Path: "output.color", Message: "must be auto, always or never", Value: c.Output.Color}
	}
	if c.Run.Workers <= 0 {
		return &ValidationError{Path: "run.workers", Message: "must be positive", Value: c.Run.Workers}
	}
	if c.Watch.Debounce < 0 {
		return &ValidationError{Path: "watch.debounce", Message: "cannot be negative", Value: c.Watch.Debounce.Std()}
	}
	if c.Script.Timeout <= 0 {
		return &ValidationError{Path: "script.timeout", Message: "must be positive", Value: c.Script.Timeout.Std()}
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}
