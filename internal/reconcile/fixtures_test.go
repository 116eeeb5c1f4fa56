package reconcile

import (
	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
)

func vmFixture(vmid int, name, status, tags string) proxmox.VM {
	return proxmox.VM{
		VMID:     vmid,
		Name:     name,
		Status:   status,
		Cores:    2,
		MemoryMB: 4096,
		DiskGB:   20,
		Tags:     tags,
	}
}
