// Package config loads the optional YAML settings file. Command line flags
// take precedence over values read here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by all commands.
type Config struct {
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Verify re-reads written containers with an independent decoder
	Verify bool `yaml:"verify"`

	// Force allows overwriting an existing output file
	Force bool `yaml:"force"`

	// OutputPerm is the permission of created files, e.g. "0644"
	OutputPerm string `yaml:"output_perm"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LogLevel:   "info",
		Verify:     false,
		Force:      false,
		OutputPerm: "0644",
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if _, err := cfg.Level(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Perm(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Perm parses OutputPerm as an octal file mode.
func (c Config) Perm() (fs.FileMode, error) {
	var perm uint32
	if _, err := fmt.Sscanf(c.OutputPerm, "%o", &perm); err != nil || perm > 0o777 {
		return 0, fmt.Errorf("invalid output_perm %q", c.OutputPerm)
	}
	return fs.FileMode(perm), nil
}
