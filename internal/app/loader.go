package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG config directory.
	AppName = "hfdl"

	// LocalConfigFile is looked up in the working directory.
	LocalConfigFile = ".hfdl.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// UserConfigFile is the per-user config path under $XDG_CONFIG_HOME.
func UserConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, when given
// 2. .hfdl.yaml in the current directory
// 3. $XDG_CONFIG_HOME/hfdl/config.yaml
//
// Returns an empty string if nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, LocalConfigFile)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	if user := UserConfigFile(); user != "" {
		if _, err := os.Stat(user); err == nil {
			return user
		}
	}
	return ""
}

// LoadConfigFile reads the YAML file at path over a copy of base. Keys missing
// from the file keep the value from base.
func LoadConfigFile(path string, base *Config) (*Config, error) {
	if base == nil {
		base = DefaultConfig()
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
