// Package config handles the global quill configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the global configuration, loaded from
// ~/.config/quill/config.toml.
type Config struct {
	// DefaultVault names the vault used when none is specified.
	DefaultVault string `toml:"default_vault"`

	// Vaults maps vault names to paths.
	Vaults map[string]string `toml:"vaults"`

	// UI holds presentation settings.
	UI UIConfig `toml:"ui"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Accent overrides the accent color (hex or ANSI number).
	Accent string `toml:"accent"`
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "quill", "config.toml")
}

// ResolveConfigPath returns the explicit path if given, else the default.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return DefaultConfigPath()
}

// Load loads the config from the default location.
// Returns an empty config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{Vaults: make(map[string]string)}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Vaults == nil {
		cfg.Vaults = make(map[string]string)
	}

	return cfg, nil
}

// GetVaultPath resolves a named vault to its path.
func (c *Config) GetVaultPath(name string) (string, error) {
	path, ok := c.Vaults[name]
	if !ok {
		return "", fmt.Errorf("vault '%s' not found in config", name)
	}
	return expandHome(path), nil
}

// GetDefaultVaultPath resolves the configured default vault.
func (c *Config) GetDefaultVaultPath() (string, error) {
	if c.DefaultVault == "" {
		return "", fmt.Errorf("no default vault configured")
	}
	return c.GetVaultPath(c.DefaultVault)
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
