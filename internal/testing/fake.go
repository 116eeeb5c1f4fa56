package testing

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
)

// FakeProvisioner is an in-memory proxmox.Provisioner. Cloned VMs start out
// with the template's shape until ConfigureVM and ResizeDisk touch them, so
// a reconcile run against the fake exercises the same call sequence the real
// hypervisor needs.
//
// Failures are injected via FailOn, keyed by operation name ("clone",
// "configure", "resize", "start", "stop", "delete", "list", "get",
// "version", "storage") or by "op:vmid" to scope the failure to one node.
type FakeProvisioner struct {
	mu    sync.Mutex
	vms   map[int]*proxmox.VM
	calls map[string]int

	// Configs records the last ConfigOpts applied per VMID.
	Configs map[int]proxmox.ConfigOpts

	// FailOn injects errors; see type comment for keys.
	FailOn map[string]error

	// TemplateVMID and TemplateDiskGB describe the clone source.
	TemplateVMID   int
	TemplateDiskGB int

	// Storages lists the storages StorageExists acknowledges.
	Storages []string
}

// NewFakeProvisioner creates an empty fake with the given template.
func NewFakeProvisioner(templateVMID int) *FakeProvisioner {
	return &FakeProvisioner{
		vms:            map[int]*proxmox.VM{},
		calls:          map[string]int{},
		Configs:        map[int]proxmox.ConfigOpts{},
		FailOn:         map[string]error{},
		TemplateVMID:   templateVMID,
		TemplateDiskGB: 10,
		Storages:       []string{"local", "local-lvm"},
	}
}

// AddVM seeds an existing VM, for tests that start from observed state.
func (f *FakeProvisioner) AddVM(vm proxmox.VM) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := vm
	f.vms[vm.VMID] = &copied
}

// RemoveVM deletes a VM out-of-band, bypassing call counting.
func (f *FakeProvisioner) RemoveVM(vmid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vms, vmid)
}

// VM returns a copy of the VM, or nil.
func (f *FakeProvisioner) VM(vmid int) *proxmox.VM {
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[vmid]
	if !ok {
		return nil
	}
	copied := *vm
	return &copied
}

// CallCount returns how often the operation ran, including failed runs.
func (f *FakeProvisioner) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeProvisioner) enter(op string, vmid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if err, ok := f.FailOn[fmt.Sprintf("%s:%d", op, vmid)]; ok {
		return err
	}
	if err, ok := f.FailOn[op]; ok {
		return err
	}
	return nil
}

// Version returns a fixed version string.
func (f *FakeProvisioner) Version(_ context.Context) (string, error) {
	if err := f.enter("version", 0); err != nil {
		return "", err
	}
	return "8.2.4", nil
}

// ListVMs returns every VM sorted by VMID.
func (f *FakeProvisioner) ListVMs(_ context.Context) ([]proxmox.VM, error) {
	if err := f.enter("list", 0); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]proxmox.VM, 0, len(f.vms))
	for _, vm := range f.vms {
		out = append(out, *vm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VMID < out[j].VMID })
	return out, nil
}

// GetVM returns a copy of the VM, or nil if absent.
func (f *FakeProvisioner) GetVM(_ context.Context, vmid int) (*proxmox.VM, error) {
	if err := f.enter("get", vmid); err != nil {
		return nil, err
	}
	return f.VM(vmid), nil
}

// CloneVM creates a stopped VM with the template's shape.
func (f *FakeProvisioner) CloneVM(_ context.Context, opts proxmox.CloneOpts) error {
	if err := f.enter("clone", opts.VMID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.vms[opts.VMID]; exists {
		return &proxmox.APIError{StatusCode: 500, Message: fmt.Sprintf("unable to create VM %d: config file already exists", opts.VMID)}
	}
	f.vms[opts.VMID] = &proxmox.VM{
		VMID:     opts.VMID,
		Name:     opts.Name,
		Status:   "stopped",
		Cores:    1,
		MemoryMB: 512,
		DiskGB:   f.TemplateDiskGB,
	}
	return nil
}

// ConfigureVM applies the non-zero fields and records them.
func (f *FakeProvisioner) ConfigureVM(_ context.Context, vmid int, opts proxmox.ConfigOpts) error {
	if err := f.enter("configure", vmid); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[vmid]
	if !ok {
		return &proxmox.APIError{StatusCode: 404, Message: fmt.Sprintf("VM %d does not exist", vmid)}
	}
	if opts.Cores > 0 {
		vm.Cores = opts.Cores
	}
	if opts.MemoryMB > 0 {
		vm.MemoryMB = opts.MemoryMB
	}
	if opts.Tags != "" {
		vm.Tags = opts.Tags
	}
	f.Configs[vmid] = opts
	return nil
}

// ResizeDisk grows the disk; shrinks are rejected like the real API does.
func (f *FakeProvisioner) ResizeDisk(_ context.Context, vmid, sizeGB int) error {
	if err := f.enter("resize", vmid); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[vmid]
	if !ok {
		return &proxmox.APIError{StatusCode: 404, Message: fmt.Sprintf("VM %d does not exist", vmid)}
	}
	if sizeGB < vm.DiskGB {
		return &proxmox.APIError{StatusCode: 400, Message: "shrinking disks is not supported"}
	}
	vm.DiskGB = sizeGB
	return nil
}

// StartVM marks the VM running.
func (f *FakeProvisioner) StartVM(_ context.Context, vmid int) error {
	if err := f.enter("start", vmid); err != nil {
		return err
	}
	return f.setStatus(vmid, "running")
}

// StopVM marks the VM stopped.
func (f *FakeProvisioner) StopVM(_ context.Context, vmid int) error {
	if err := f.enter("stop", vmid); err != nil {
		return err
	}
	return f.setStatus(vmid, "stopped")
}

// DeleteVM removes the VM. Deleting an absent VM succeeds.
func (f *FakeProvisioner) DeleteVM(_ context.Context, vmid int) error {
	if err := f.enter("delete", vmid); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vms, vmid)
	return nil
}

// StorageExists reports whether the storage is in Storages.
func (f *FakeProvisioner) StorageExists(_ context.Context, storage string) (bool, error) {
	if err := f.enter("storage", 0); err != nil {
		return false, err
	}
	for _, s := range f.Storages {
		if s == storage {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeProvisioner) setStatus(vmid int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[vmid]
	if !ok {
		return &proxmox.APIError{StatusCode: 404, Message: fmt.Sprintf("VM %d does not exist", vmid)}
	}
	vm.Status = status
	return nil
}
