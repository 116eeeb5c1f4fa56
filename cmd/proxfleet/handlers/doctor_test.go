package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
)

func TestDoctor_AllChecksPass(t *testing.T) {
	cfg, fake := testFixtures(t)
	fake.AddVM(proxmox.VM{VMID: cfg.TemplateVMID, Name: "debian-template", Status: "stopped"})

	assert.NoError(t, Doctor(context.Background(), ""))
}

func TestDoctor_MissingTemplateFails(t *testing.T) {
	testFixtures(t)

	err := Doctor(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem")
}

func TestDoctor_UnknownStorageFails(t *testing.T) {
	cfg, fake := testFixtures(t)
	fake.AddVM(proxmox.VM{VMID: cfg.TemplateVMID, Name: "debian-template", Status: "stopped"})
	cfg.Hardware.Storage = "nvme-pool"

	err := Doctor(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem")
}
