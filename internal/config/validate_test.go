package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/util/keygen"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	kp, err := keygen.GenerateEd25519KeyPair()
	require.NoError(t, err)

	return &Config{
		Fleet:         "homelab",
		Endpoint:      "https://pve.lan:8006",
		Node:          "pve",
		TokenID:       "provisioner@pam!proxfleet",
		TokenSecret:   "secret",
		TemplateVMID:  9000,
		Count:         3,
		VMIDBase:      200,
		AdminUser:     "ops",
		SSHPublicKeys: string(kp.PublicKey),
		Hardware: Hardware{
			Cores:    2,
			MemoryMB: 4096,
			DiskGB:   20,
			Storage:  "local-lvm",
		},
		Network: Network{
			Bridge:     "vmbr0",
			Subnet:     "192.168.1.0/24",
			Gateway:    "192.168.1.1",
			HostOffset: 21,
		},
		State: State{Backend: BackendFile, Dir: "."},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig(t).Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"empty fleet", func(c *Config) { c.Fleet = "" }, "fleet name"},
		{"uppercase fleet", func(c *Config) { c.Fleet = "HomeLab" }, "fleet name"},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint"},
		{"http endpoint", func(c *Config) { c.Endpoint = "http://pve.lan:8006" }, "https"},
		{"missing node", func(c *Config) { c.Node = "" }, "node"},
		{"missing token id", func(c *Config) { c.TokenID = "" }, "token_id"},
		{"missing token secret", func(c *Config) { c.TokenSecret = "" }, "token_secret"},
		{"zero template", func(c *Config) { c.TemplateVMID = 0 }, "template_vmid"},
		{"negative template", func(c *Config) { c.TemplateVMID = -1 }, "template_vmid"},
		{"zero count", func(c *Config) { c.Count = 0 }, "count"},
		{"low vmid base", func(c *Config) { c.VMIDBase = 99 }, "vmid_base"},
		{"zero cores", func(c *Config) { c.Hardware.Cores = 0 }, "cores"},
		{"tiny memory", func(c *Config) { c.Hardware.MemoryMB = 128 }, "memory_mb"},
		{"zero disk", func(c *Config) { c.Hardware.DiskGB = 0 }, "disk_gb"},
		{"vlan too high", func(c *Config) { c.Network.VLAN = 5000 }, "vlan"},
		{"vlan negative", func(c *Config) { c.Network.VLAN = -1 }, "vlan"},
		{"bad subnet", func(c *Config) { c.Network.Subnet = "not-a-cidr" }, "subnet"},
		{"ipv6 subnet", func(c *Config) { c.Network.Subnet = "fd00::/64" }, "IPv4"},
		{"bad gateway", func(c *Config) { c.Network.Gateway = "999.1.1.1" }, "gateway"},
		{"gateway outside subnet", func(c *Config) { c.Network.Gateway = "10.0.0.1" }, "outside subnet"},
		{"zero host offset", func(c *Config) { c.Network.HostOffset = 0 }, "host_offset"},
		{"missing keys", func(c *Config) { c.SSHPublicKeys = "" }, "ssh_public_keys"},
		{"garbage keys", func(c *Config) { c.SSHPublicKeys = "not-a-key" }, "public key"},
		{"unknown backend", func(c *Config) { c.State.Backend = "consul" }, "state.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_AddressCollidesWithGateway(t *testing.T) {
	cfg := validConfig(t)
	cfg.Network.Gateway = "192.168.1.21" // first derived address
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestValidate_FleetOverflowsSubnet(t *testing.T) {
	cfg := validConfig(t)
	cfg.Network.Subnet = "192.168.1.0/29" // hosts .1-.6
	cfg.Network.Gateway = "192.168.1.1"
	cfg.Network.HostOffset = 5
	cfg.Count = 4
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_VLANAllowedRange(t *testing.T) {
	cfg := validConfig(t)
	cfg.Network.VLAN = 40
	assert.NoError(t, cfg.Validate())

	cfg.Network.VLAN = 4094
	assert.NoError(t, cfg.Validate())

	cfg.Network.VLAN = 0 // untagged
	assert.NoError(t, cfg.Validate())
}

func TestValidate_S3BackendRequiresCredentials(t *testing.T) {
	cfg := validConfig(t)
	cfg.State.Backend = BackendS3
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state.s3")

	cfg.State.S3 = S3{
		Endpoint:  "https://s3.lan",
		Region:    "us-east-1",
		Bucket:    "proxfleet-state",
		AccessKey: "ak",
		SecretKey: "sk",
	}
	assert.NoError(t, cfg.Validate())
}
