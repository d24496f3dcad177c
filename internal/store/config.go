package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
	BackendMemory = "memory"
)

type Config struct {
	// DataDir holds tasks.sqlite. Defaults to <config dir>/data.
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`

	// Backend selects the task repository: sqlite (default), remote or memory.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// RemoteURL is the base URL of a `tasknav serve` instance (backend=remote).
	RemoteURL string `json:"remoteUrl,omitempty" yaml:"remoteUrl,omitempty"`

	// RootTitle labels the root page.
	RootTitle string `json:"rootTitle,omitempty" yaml:"rootTitle,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// InvalidateOnNavigate re-fetches every page on entry instead of serving it
	// from the cache.
	InvalidateOnNavigate bool `json:"invalidateOnNavigate,omitempty" yaml:"invalidateOnNavigate,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.tasknav).
	if v := strings.TrimSpace(os.Getenv("TASKNAV_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tasknav"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads config.json, falling back to config.yaml. Missing files
// yield the defaults.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		yamlPath := filepath.Join(filepath.Dir(path), "config.yaml")
		yb, yerr := os.ReadFile(yamlPath)
		if yerr != nil {
			if !errors.Is(yerr, os.ErrNotExist) {
				return nil, yerr
			}
			break
		}
		if err := yaml.Unmarshal(yb, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
	default:
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	switch c.Backend {
	case BackendSQLite, BackendRemote, BackendMemory:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "warn"
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// SaveConfig writes config.json. A config.yaml, if present, is left alone
// and stops being read.
func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// Set assigns a config field by its json name.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "dataDir":
		c.DataDir = value
	case "backend":
		c.Backend = value
	case "remoteUrl":
		c.RemoteURL = value
	case "rootTitle":
		c.RootTitle = value
	case "logLevel":
		c.LogLevel = value
	case "invalidateOnNavigate":
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			c.InvalidateOnNavigate = true
		case "false", "0", "no", "off", "":
			c.InvalidateOnNavigate = false
		default:
			return fmt.Errorf("invalid bool for %s: %q", key, value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.applyDefaults()
}
