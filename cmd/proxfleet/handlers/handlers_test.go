package handlers

import (
	"testing"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
	testutil "github.com/proxfleet/proxfleet/internal/testing"
)

// injectFixtures swaps the factory variables for test doubles and restores
// them when the test finishes.
func injectFixtures(t *testing.T, cfg *config.Config, fake *testutil.FakeProvisioner) {
	t.Helper()

	origLoad := loadConfigFile
	origFind := findConfigFile
	origProv := newProvisioner
	t.Cleanup(func() {
		loadConfigFile = origLoad
		findConfigFile = origFind
		newProvisioner = origProv
	})

	loadConfigFile = func(string) (*config.Config, error) { return cfg, nil }
	findConfigFile = func() (string, error) { return config.DefaultConfigFile, nil }
	newProvisioner = func(*config.Config) proxmox.Provisioner { return fake }
}

func testFixtures(t *testing.T) (*config.Config, *testutil.FakeProvisioner) {
	t.Helper()
	cfg := testutil.NewConfigBuilder().WithStateDir(t.TempDir()).Build()
	fake := testutil.NewFakeProvisioner(cfg.TemplateVMID)
	injectFixtures(t, cfg, fake)
	return cfg, fake
}
