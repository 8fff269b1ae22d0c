// Package userconfig provides persistent user configuration for
// orca-install. Configuration is stored in ~/.orca/config.toml and
// supplies defaults that flags and environment variables override.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents user-configurable settings.
type Config struct {
	// BinDir is the default installation directory. Overridden by
	// ORCA_BINDIR and the --bin-dir flag.
	BinDir string `toml:"bin_dir"`

	// Tag pins a release tag so plain `orca-install` installs a fixed
	// version. Empty means latest.
	Tag string `toml:"tag"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{}
}

// Path returns the user config file location (~/.orca/config.toml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".orca", "config.toml"), nil
}

// Load reads the config file and returns the configuration.
// Returns default values if the file doesn't exist.
// Returns an error only for file parsing issues, not missing files.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil // Silently use defaults
	}
	return loadFromPath(path)
}

// loadFromPath reads config from a specific file path (for testing).
func loadFromPath(path string) (*Config, error) {
	userCfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return userCfg, nil // File doesn't exist, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return userCfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.saveToPath(path)
}

// saveToPath writes config to a specific file path (for testing).
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
