package proxmox

import (
	"context"
)

// VM is a Proxmox-reported virtual machine, trimmed to the fields the
// reconciler compares and reports.
type VM struct {
	VMID     int
	Name     string
	Node     string
	Status   string
	Cores    int
	MemoryMB int
	DiskGB   int
	Tags     string
}

// Running reports whether the VM is powered on.
func (v VM) Running() bool {
	return v.Status == "running"
}

// CloneOpts holds the parameters for cloning a template into a new VM.
type CloneOpts struct {
	TemplateVMID int
	VMID         int
	Name         string
	Storage      string
	// Full requests a full clone instead of a linked one. Fleet nodes are
	// always full clones so they survive template deletion.
	Full bool
}

// ConfigOpts holds the mutable VM attributes proxfleet manages, including
// the cloud-init parameters. Zero values are omitted from the request.
type ConfigOpts struct {
	Cores    int
	MemoryMB int
	// Net0 is the net0 device string, e.g. "virtio,bridge=vmbr0,tag=40".
	Net0 string
	// IPConfig0 is the cloud-init address, e.g. "ip=192.168.1.21/24,gw=192.168.1.1".
	IPConfig0 string
	// CIUser is the cloud-init administrative account.
	CIUser string
	// SSHKeys is raw authorized_keys material; the client handles the
	// encoding the API expects.
	SSHKeys string
	Tags    string
}

// Provisioner is the hypervisor interface consumed by the reconciler.
type Provisioner interface {
	// Version returns the Proxmox VE version string, used as a
	// connectivity and credential probe.
	Version(ctx context.Context) (string, error)

	// ListVMs returns every VM on the configured node. Callers filter to
	// managed VMs by tags.
	ListVMs(ctx context.Context) ([]VM, error)

	// GetVM returns the VM with the given VMID, or nil if it does not exist.
	GetVM(ctx context.Context, vmid int) (*VM, error)

	// CloneVM clones a template and waits for the clone task to finish.
	CloneVM(ctx context.Context, opts CloneOpts) error

	// ConfigureVM applies the given attributes to an existing VM.
	ConfigureVM(ctx context.Context, vmid int, opts ConfigOpts) error

	// ResizeDisk grows the VM's boot disk to the given size. Proxmox
	// cannot shrink disks.
	ResizeDisk(ctx context.Context, vmid, sizeGB int) error

	// StartVM powers the VM on. Starting a running VM is not an error.
	StartVM(ctx context.Context, vmid int) error

	// StopVM powers the VM off and waits for it to stop.
	StopVM(ctx context.Context, vmid int) error

	// DeleteVM removes the VM. Deleting an absent VM is not an error.
	DeleteVM(ctx context.Context, vmid int) error

	// StorageExists reports whether the named storage exists on the node.
	StorageExists(ctx context.Context, storage string) (bool, error)
}
