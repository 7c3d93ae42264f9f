package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

const defaultConfigYAML = `# closenote configuration
# Directory holding the draft storage (default: the config directory).
dir: ""
# Storage backend: sqlite | file | memory
backend: sqlite
# First line of the full report.
title: "**Geek Squad Closing Note**"
# Optional log file (empty: no logging unless --verbose).
log_file: ""
`

// Config models <config dir>/config.yaml. Every key is optional.
type Config struct {
	Dir     string `yaml:"dir,omitempty"`
	Backend string `yaml:"backend,omitempty"`
	Title   string `yaml:"title,omitempty"`
	LogFile string `yaml:"log_file,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.closenote).
	if v := strings.TrimSpace(os.Getenv("CLOSENOTE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".closenote"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the config file. A missing file yields an empty Config.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// EnsureConfig writes the commented default config if none exists and returns its path.
func EnsureConfig() (string, bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := atomicWriteFile(dir, configFileName+".*.tmp", path, []byte(defaultConfigYAML), 0o644); err != nil {
		return "", false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, true, nil
}

// SaveConfig replaces the config file with cfg.
func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, configFileName+".*.tmp", path, b, 0o644)
}

// DefaultDir is where drafts live when neither flags nor config name a directory.
func DefaultDir() (string, error) {
	return ConfigDir()
}
