package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/config"
)

func injectWizard(t *testing.T, result *config.WizardResult, wizardErr error) map[string][]byte {
	t.Helper()

	origWizard := runWizard
	origWrite := writeFile
	t.Cleanup(func() {
		runWizard = origWizard
		writeFile = origWrite
	})

	runWizard = func(context.Context) (*config.WizardResult, error) {
		return result, wizardErr
	}
	written := map[string][]byte{}
	writeFile = func(name string, data []byte, _ os.FileMode) error {
		written[name] = data
		return nil
	}
	return written
}

func wizardResult() *config.WizardResult {
	return &config.WizardResult{
		Fleet:        "homelab",
		Endpoint:     "https://pve.lan:8006",
		Node:         "pve",
		TokenID:      "provisioner@pam!proxfleet",
		TemplateVMID: 9000,
		Count:        3,
		Subnet:       "192.168.1.0/24",
		Gateway:      "192.168.1.1",
		HostOffset:   21,
	}
}

func TestInit_WritesConfig(t *testing.T) {
	injectWizard(t, wizardResult(), nil)
	path := filepath.Join(t.TempDir(), "proxfleet.yaml")

	require.NoError(t, Init(context.Background(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "fleet: homelab")
	assert.Contains(t, string(raw), config.EnvTokenSecret)
}

func TestInit_GeneratesKeyPair(t *testing.T) {
	result := wizardResult()
	result.GenerateKeys = true
	written := injectWizard(t, result, nil)
	path := filepath.Join(t.TempDir(), "proxfleet.yaml")

	require.NoError(t, Init(context.Background(), path))

	assert.Contains(t, string(written["homelab_ed25519"]), "PRIVATE KEY")
	assert.Contains(t, string(written["homelab_ed25519.pub"]), "ssh-ed25519")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ssh-ed25519")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	injectWizard(t, wizardResult(), nil)
	path := filepath.Join(t.TempDir(), "proxfleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fleet: existing\n"), 0o600))

	err := Init(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_WizardErrorPropagates(t *testing.T) {
	injectWizard(t, nil, errors.New("user aborted"))
	path := filepath.Join(t.TempDir(), "proxfleet.yaml")

	err := Init(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wizard failed")
}
