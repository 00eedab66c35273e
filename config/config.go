// Package config handles configuration loading for kosmograd.
// Configuration is layered, later sources overriding earlier ones:
// 1. built-in defaults
// 2. ~/.config/kosmograd/config.yaml (user-level)
// 3. .kosmograd.yaml (project-level)
// 4. KOSMOGRAD_* environment variables
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// GreetingConfig holds the greeting target defaults.
type GreetingConfig struct {
	// Count is the greeting count; any value other than 1 pluralizes.
	Count int `yaml:"count"`

	// Name is the greeting target's name.
	Name string `yaml:"name"`
}

// GuestConfig locates the farewell collaborator.
type GuestConfig struct {
	// Path is the wasm module implementing the collaborator.
	Path string `yaml:"path"`

	// Export is the function the guest must export (default: "goodbye").
	Export string `yaml:"export"`

	// Env holds key=value pairs passed into the guest's environment.
	Env []string `yaml:"env"`
}

// Config is the main configuration structure.
type Config struct {
	Greeting GreetingConfig `yaml:"greeting"`
	Guest    GuestConfig    `yaml:"guest"`

	// Debug enables verbose logging and wasm debug info.
	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Greeting: GreetingConfig{
			Count: 10,
			Name:  "Jeena",
		},
		Guest: GuestConfig{
			Export: "goodbye",
		},
	}
}

// Load assembles the layered configuration.  An explicit path, if
// non-empty, replaces the user- and project-level files and must
// exist; the standard locations are optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
		cfg.applyEnv()
		return cfg, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		user := filepath.Join(home, ".config", "kosmograd", "config.yaml")
		if err := cfg.mergeFile(user); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
	}

	if err := cfg.mergeFile(".kosmograd.yaml"); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	return nil
}

// applyEnv overlays KOSMOGRAD_* environment variables.  Unparsable
// values are ignored rather than fatal; flags remain the authoritative
// override.
func (cfg *Config) applyEnv() {
	if s, ok := os.LookupEnv("KOSMOGRAD_COUNT"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			cfg.Greeting.Count = n
		}
	}
	if s, ok := os.LookupEnv("KOSMOGRAD_NAME"); ok {
		cfg.Greeting.Name = s
	}
	if s, ok := os.LookupEnv("KOSMOGRAD_GUEST"); ok {
		cfg.Guest.Path = s
	}
	if s, ok := os.LookupEnv("KOSMOGRAD_EXPORT"); ok {
		cfg.Guest.Export = s
	}
	if s, ok := os.LookupEnv("KOSMOGRAD_DEBUG"); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			cfg.Debug = b
		}
	}
}
