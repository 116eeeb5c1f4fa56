package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/config"
)

func testConfig(count int) *config.Config {
	return &config.Config{
		Fleet:         "homelab",
		Endpoint:      "https://pve.lan:8006",
		Node:          "pve",
		TokenID:       "t",
		TokenSecret:   "s",
		TemplateVMID:  9000,
		Count:         count,
		VMIDBase:      200,
		AdminUser:     "ops",
		SSHPublicKeys: "ssh-ed25519 AAAA test",
		Hardware: config.Hardware{
			Cores:    2,
			MemoryMB: 4096,
			DiskGB:   20,
			Storage:  "local-lvm",
		},
		Network: config.Network{
			Bridge:     "vmbr0",
			VLAN:       40,
			Subnet:     "192.168.1.0/24",
			Gateway:    "192.168.1.1",
			HostOffset: 21,
		},
	}
}

func TestDerive_ExampleScenario(t *testing.T) {
	// N=3 derives .21, .22, .23 with zero-padded names.
	nodes, err := Derive(testConfig(3))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, "homelab-01", nodes[0].Name)
	assert.Equal(t, "homelab-02", nodes[1].Name)
	assert.Equal(t, "homelab-03", nodes[2].Name)

	assert.Equal(t, "192.168.1.21", nodes[0].Address)
	assert.Equal(t, "192.168.1.22", nodes[1].Address)
	assert.Equal(t, "192.168.1.23", nodes[2].Address)

	assert.Equal(t, 200, nodes[0].VMID)
	assert.Equal(t, 201, nodes[1].VMID)
	assert.Equal(t, 202, nodes[2].VMID)

	assert.Equal(t, "192.168.1.21/24", nodes[0].CIDR())
	assert.Equal(t, 40, nodes[0].VLAN)
	assert.Equal(t, "vmbr0", nodes[0].Bridge)
}

func TestDerive_Deterministic(t *testing.T) {
	a, err := Derive(testConfig(5))
	require.NoError(t, err)
	b, err := Derive(testConfig(5))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDerive_GrowthKeepsExistingIdentity(t *testing.T) {
	three, err := Derive(testConfig(3))
	require.NoError(t, err)
	four, err := Derive(testConfig(4))
	require.NoError(t, err)

	// Adding a 4th node must not rename or readdress nodes 1-3.
	assert.Equal(t, three, four[:3])
	assert.Equal(t, "homelab-04", four[3].Name)
	assert.Equal(t, "192.168.1.24", four[3].Address)
}

func TestDerive_PairwiseDistinct(t *testing.T) {
	nodes, err := Derive(testConfig(10))
	require.NoError(t, err)

	names := map[string]bool{}
	addrs := map[string]bool{}
	vmids := map[int]bool{}
	for _, n := range nodes {
		assert.False(t, names[n.Name], "duplicate name %s", n.Name)
		assert.False(t, addrs[n.Address], "duplicate address %s", n.Address)
		assert.False(t, vmids[n.VMID], "duplicate vmid %d", n.VMID)
		names[n.Name] = true
		addrs[n.Address] = true
		vmids[n.VMID] = true
	}
}

func TestDerive_TemplateVMIDCollision(t *testing.T) {
	cfg := testConfig(3)
	cfg.TemplateVMID = 201
	_, err := Derive(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template_vmid")
}

func TestDerive_ManagedTags(t *testing.T) {
	nodes, err := Derive(testConfig(1))
	require.NoError(t, err)
	assert.Equal(t, "fleet-homelab;proxfleet", nodes[0].Tags)
}

func TestDerive_AddressOverflow(t *testing.T) {
	cfg := testConfig(3)
	cfg.Network.Subnet = "192.168.1.0/30"
	cfg.Network.Gateway = "192.168.1.1"
	cfg.Network.HostOffset = 2
	_, err := Derive(cfg)
	require.Error(t, err)
}
