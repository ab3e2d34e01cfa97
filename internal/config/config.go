// Package config loads the host application's YAML configuration. The
// discovery engine itself takes options programmatically; this is only for
// the CLI front end.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"ntrip-atlas/internal/selection"
)

type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery"`
	Log       LogConfig       `yaml:"log"`
}

type DiscoveryConfig struct {
	// PaymentPriority is "free-first" (default) or "paid-first".
	PaymentPriority string `yaml:"payment_priority"`
	// Timeout bounds each per-candidate sourcetable stream.
	Timeout time.Duration `yaml:"timeout"`
	// StateDir holds credentials and failure history.
	StateDir string `yaml:"state_dir"`
	// CredentialsFile optionally seeds per-service logins at startup.
	CredentialsFile string `yaml:"credentials_file"`
}

// ServiceCredential is one entry of the optional credentials file, keyed by
// service ID:
//
//	bkg-euref:
//	  username: alice
//	  password: s3cret
type ServiceCredential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadCredentialsFile reads a YAML map of service ID to login.
func LoadCredentialsFile(path string) (map[string]ServiceCredential, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	creds := make(map[string]ServiceCredential)
	if err := yaml.Unmarshal(b, &creds); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return creds, nil
}

type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Pretty switches to human-readable console output.
	Pretty bool `yaml:"pretty"`
}

// Load reads path and applies defaults. An empty path returns the defaults
// outright.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if cfg.Discovery.PaymentPriority == "" {
		cfg.Discovery.PaymentPriority = "free-first"
	}
	if _, err := cfg.Priority(); err != nil {
		return Config{}, err
	}
	if cfg.Discovery.Timeout <= 0 {
		cfg.Discovery.Timeout = 10 * time.Second
	}
	if cfg.Discovery.StateDir == "" {
		cfg.Discovery.StateDir = defaultStateDir()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}

// Priority maps the configured payment priority string to its mode.
func (c Config) Priority() (selection.PaymentPriority, error) {
	switch c.Discovery.PaymentPriority {
	case "free-first":
		return selection.FreeFirst, nil
	case "paid-first":
		return selection.PaidFirst, nil
	}
	return 0, fmt.Errorf("config: unknown payment priority %q", c.Discovery.PaymentPriority)
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ntrip-atlas")
	}
	return ".ntrip-atlas"
}
