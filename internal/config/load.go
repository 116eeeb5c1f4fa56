package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up when no path is given.
const DefaultConfigFile = "proxfleet.yaml"

// EnvTokenSecret supplies the API token secret when it is kept out of the
// config file.
const EnvTokenSecret = "PROXFLEET_TOKEN_SECRET"

// LoadFile reads and parses the fleet configuration from a YAML file,
// applies defaults and the token-secret environment override, and validates
// the result.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if secret := os.Getenv(EnvTokenSecret); secret != "" && cfg.TokenSecret.IsZero() {
		cfg.TokenSecret = Secret(secret)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the default config file path if it exists in the
// current directory.
func FindConfigFile() (string, error) {
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return "", fmt.Errorf("%s not found in current directory", DefaultConfigFile)
	}
	return DefaultConfigFile, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Hardware.Cores == 0 {
		cfg.Hardware.Cores = 2
	}
	if cfg.Hardware.MemoryMB == 0 {
		cfg.Hardware.MemoryMB = 4096
	}
	if cfg.Hardware.DiskGB == 0 {
		cfg.Hardware.DiskGB = 20
	}
	if cfg.Hardware.Storage == "" {
		cfg.Hardware.Storage = "local-lvm"
	}
	if cfg.Network.Bridge == "" {
		cfg.Network.Bridge = "vmbr0"
	}
	if cfg.Network.HostOffset == 0 {
		cfg.Network.HostOffset = 21
	}
	if cfg.VMIDBase == 0 {
		cfg.VMIDBase = 200
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "ops"
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = BackendFile
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = "."
	}
	if cfg.State.S3.Region == "" {
		cfg.State.S3.Region = "us-east-1"
	}
}
