// Package config loads the user configuration file and owns the mealpy
// directories under the platform config and cache roots.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appDir = "mealpy"

// Template seeds a fresh configuration file.
const Template = `# mealpy configuration
email_address: user@example.com
use_keyring: false
`

// Config is the persisted user configuration.
type Config struct {
	EmailAddress string `yaml:"email_address"`
	UseKeyring   bool   `yaml:"use_keyring"`
}

// ErrCreated signals that a missing config file was just seeded from the
// template and the user must edit it before rerunning.
var ErrCreated = errors.New("config file created, edit it and rerun")

// Dir returns the mealpy config directory, creating it if needed.
func Dir() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// CacheDir returns the mealpy cache directory, creating it if needed.
func CacheDir() (string, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath is the standard location of the config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads and validates the config file. A missing file is seeded
// from the template and reported via ErrCreated so the CLI can print
// where to edit.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return Config{}, err
		}
		if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("%s: %w", path, ErrCreated)
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	addr := strings.TrimSpace(c.EmailAddress)
	if addr == "" || addr == "user@example.com" {
		return errors.New("email_address must be set to your MealPal account email")
	}
	if !strings.Contains(addr, "@") {
		return fmt.Errorf("email_address %q is not an email address", addr)
	}
	return nil
}
