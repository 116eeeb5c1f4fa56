// Package fleet models the desired state of a VM fleet and computes the
// difference against observed infrastructure.
//
// Everything in this package is pure: descriptors derive deterministically
// from the configuration, and the diff never talks to a provider.
package fleet

import (
	"fmt"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/util/naming"
	"github.com/proxfleet/proxfleet/internal/util/tags"
)

// Node is the desired state of a single fleet member. Identity (name,
// VMID, address) derives from the zero-based index alone, so resizing the
// fleet never renumbers existing nodes.
type Node struct {
	Index    int
	Name     string
	VMID     int
	Address  string
	MaskBits int
	Gateway  string

	Cores    int
	MemoryMB int
	DiskGB   int
	Storage  string

	Bridge string
	VLAN   int

	TemplateVMID  int
	AdminUser     string
	SSHPublicKeys string
	Tags          string
}

// ObservedVM is a provider-reported VM, normalized to the fields the diff
// compares. Callers filter to managed VMs before diffing.
type ObservedVM struct {
	VMID     int
	Name     string
	Cores    int
	MemoryMB int
	DiskGB   int
	Running  bool
	Tags     string
}

// Derive computes the full descriptor set for the configured fleet.
// It re-checks the invariants the descriptors must satisfy: pairwise
// distinct names, addresses, and VMIDs, and no collision with the template.
func Derive(cfg *config.Config) ([]Node, error) {
	maskBits, err := config.MaskBits(cfg.Network.Subnet)
	if err != nil {
		return nil, err
	}

	tagString := tags.NewBuilder(cfg.Fleet).Build()

	nodes := make([]Node, cfg.Count)
	seenAddr := make(map[string]int, cfg.Count)

	for i := 0; i < cfg.Count; i++ {
		vmid := cfg.VMIDBase + i
		if vmid == cfg.TemplateVMID {
			return nil, fmt.Errorf("node %d VMID %d collides with template_vmid", i, vmid)
		}

		addr, err := config.CIDRHost(cfg.Network.Subnet, cfg.Network.HostOffset+i)
		if err != nil {
			return nil, fmt.Errorf("node %d address derivation failed: %w", i, err)
		}
		if prev, dup := seenAddr[addr]; dup {
			return nil, fmt.Errorf("nodes %d and %d derive the same address %s", prev, i, addr)
		}
		seenAddr[addr] = i

		nodes[i] = Node{
			Index:         i,
			Name:          naming.Node(cfg.Fleet, i),
			VMID:          vmid,
			Address:       addr,
			MaskBits:      maskBits,
			Gateway:       cfg.Network.Gateway,
			Cores:         cfg.Hardware.Cores,
			MemoryMB:      cfg.Hardware.MemoryMB,
			DiskGB:        cfg.Hardware.DiskGB,
			Storage:       cfg.Hardware.Storage,
			Bridge:        cfg.Network.Bridge,
			VLAN:          cfg.Network.VLAN,
			TemplateVMID:  cfg.TemplateVMID,
			AdminUser:     cfg.AdminUser,
			SSHPublicKeys: cfg.SSHPublicKeys,
			Tags:          tagString,
		}
	}

	return nodes, nil
}

// CIDR returns the node address in ip/bits form for cloud-init.
func (n Node) CIDR() string {
	return fmt.Sprintf("%s/%d", n.Address, n.MaskBits)
}
