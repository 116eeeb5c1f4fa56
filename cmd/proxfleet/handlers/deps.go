// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"fmt"
	"os"
	"os/user"

	"github.com/mattn/go-isatty"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
	"github.com/proxfleet/proxfleet/internal/platform/s3"
	"github.com/proxfleet/proxfleet/internal/state"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.LoadFile

	// findConfigFile locates the config file in the current directory.
	findConfigFile = config.FindConfigFile

	// newProvisioner creates a Proxmox API client from the configuration.
	newProvisioner = func(cfg *config.Config) proxmox.Provisioner {
		opts := []proxmox.ClientOption{
			proxmox.WithTimeouts(config.LoadTimeouts()),
		}
		if cfg.InsecureTLS {
			opts = append(opts, proxmox.WithInsecureTLS())
		}
		return proxmox.NewRealClient(cfg.Endpoint, cfg.Node, cfg.TokenID, cfg.TokenSecret, opts...)
	}

	// newStateStore creates the state store selected by the configuration.
	newStateStore = func(cfg *config.Config) (state.Store, error) {
		switch cfg.State.Backend {
		case config.BackendS3:
			client, err := s3.NewClient(
				cfg.State.S3.Endpoint,
				cfg.State.S3.Region,
				cfg.State.S3.AccessKey,
				cfg.State.S3.SecretKey.Reveal(),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create S3 state client: %w", err)
			}
			return state.NewS3Store(client, cfg.State.S3.Bucket, cfg.Fleet), nil
		default:
			return state.NewFileStore(cfg.State.Dir, cfg.Fleet), nil
		}
	}

	// runWizard runs the interactive init wizard (for testing injection).
	runWizard = config.RunWizard

	// writeConfigFile writes the generated configuration (for testing injection).
	writeConfigFile = config.WriteYAML

	// writeFile writes data to a file (for testing injection).
	writeFile = os.WriteFile

	// isTerminal reports whether stdout is an interactive terminal.
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// loadConfig resolves the config path and loads the configuration.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, err
		}
		configPath = found
	}
	return loadConfigFile(configPath)
}

// lockHolder identifies this process for the advisory state lock.
func lockHolder() string {
	username := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return fmt.Sprintf("%s@%s (pid %d)", username, hostname, os.Getpid())
}
