package config

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of every environment variable the loader reads.
const EnvPrefix = "AUTOMATA_"

// envSetter applies one environment variable to a Config.
type envSetter func(c *Config, value string) error

// envMapping maps environment variables to the settings they override.
var envMapping = map[string]envSetter{
	"AUTOMATA_MAX_STEPS":          intSetter(func(c *Config) *int { return &c.Limits.MaxSteps }),
	"AUTOMATA_MAX_CONFIGURATIONS": intSetter(func(c *Config) *int { return &c.Limits.MaxConfigurations }),
	"AUTOMATA_DEDUPE":             boolSetter(func(c *Config) *bool { return &c.Limits.Dedupe }),
	"AUTOMATA_LOG_LEVEL":          stringSetter(func(c *Config) *string { return &c.Log.Level }),
	"AUTOMATA_FORMAT":             stringSetter(func(c *Config) *string { return &c.Output.Format }),
	"AUTOMATA_COLOR":              stringSetter(func(c *Config) *string { return &c.Output.Color }),
	"AUTOMATA_WORKERS":            intSetter(func(c *Config) *int { return &c.Run.Workers }),
	"AUTOMATA_WATCH_DEBOUNCE":     durationSetter(func(c *Config) *Duration { return &c.Watch.Debounce }),
	"AUTOMATA_SCRIPT_TIMEOUT":     durationSetter(func(c *Config) *Duration { return &c.Script.Timeout }),
}

// EnvVars returns the recognised environment variable names, sorted.
func EnvVars() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyEnv overrides settings from the environment. Empty values are
// treated as unset.
func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, name := range EnvVars() {
		val, ok := lookup(name)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		if err := envMapping[name](c, strings.TrimSpace(val)); err != nil {
			return &ParseError{Path: "$" + name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) envSetter {
	return func(c *Config, value string) error {
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func stringSetter(field func(*Config) *string) envSetter {
	return func(c *Config, value string) error {
		*field(c) = strings.ToLower(value)
		return nil
	}
}

func durationSetter(field func(*Config) *Duration) envSetter {
	return func(c *Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*field(c) = Duration(d)
		return nil
	}
}

// parseBool accepts the spellings strconv.ParseBool does plus yes/no and
// on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
