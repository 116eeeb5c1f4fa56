package testing

import (
	"github.com/proxfleet/proxfleet/internal/config"
)

// ConfigBuilder is a fluent builder for test configurations. The zero
// builder produces the canonical three-node homelab fleet.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a builder with homelab defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Fleet:        "homelab",
			Endpoint:     "https://pve.example.test:8006",
			Node:         "pve",
			TokenID:      "ops@pam!fleet",
			TokenSecret:  "test-secret",
			TemplateVMID: 9000,
			Count:        3,
			VMIDBase:     201,
			AdminUser:    "ops",
			Hardware: config.Hardware{
				Cores:    2,
				MemoryMB: 4096,
				DiskGB:   20,
				Storage:  "local-lvm",
			},
			Network: config.Network{
				Bridge:     "vmbr0",
				Subnet:     "192.168.1.0/24",
				Gateway:    "192.168.1.1",
				HostOffset: 21,
			},
			State: config.State{
				Backend: config.BackendFile,
				Dir:     ".",
			},
		},
	}
}

// WithFleet sets the fleet name.
func (b *ConfigBuilder) WithFleet(name string) *ConfigBuilder {
	b.cfg.Fleet = name
	return b
}

// WithCount sets the number of nodes.
func (b *ConfigBuilder) WithCount(count int) *ConfigBuilder {
	b.cfg.Count = count
	return b
}

// WithHardware sets the per-node hardware profile.
func (b *ConfigBuilder) WithHardware(cores, memoryMB, diskGB int) *ConfigBuilder {
	b.cfg.Hardware.Cores = cores
	b.cfg.Hardware.MemoryMB = memoryMB
	b.cfg.Hardware.DiskGB = diskGB
	return b
}

// WithNetwork sets the subnet, gateway, and host offset.
func (b *ConfigBuilder) WithNetwork(subnet, gateway string, hostOffset int) *ConfigBuilder {
	b.cfg.Network.Subnet = subnet
	b.cfg.Network.Gateway = gateway
	b.cfg.Network.HostOffset = hostOffset
	return b
}

// WithVLAN sets the VLAN tag.
func (b *ConfigBuilder) WithVLAN(vlan int) *ConfigBuilder {
	b.cfg.Network.VLAN = vlan
	return b
}

// WithStateDir points the file state backend at a directory, usually a
// t.TempDir().
func (b *ConfigBuilder) WithStateDir(dir string) *ConfigBuilder {
	b.cfg.State.Backend = config.BackendFile
	b.cfg.State.Dir = dir
	return b
}

// WithSSHPublicKeys sets the authorized keys material.
func (b *ConfigBuilder) WithSSHPublicKeys(keys string) *ConfigBuilder {
	b.cfg.SSHPublicKeys = keys
	return b
}

// Build returns a copy of the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	return &cfg
}

// MinimalConfig returns the canonical three-node test fleet.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
