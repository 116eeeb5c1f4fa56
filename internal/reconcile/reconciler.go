package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/fleet"
	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
	"github.com/proxfleet/proxfleet/internal/state"
	"github.com/proxfleet/proxfleet/internal/util/tags"
)

// ConflictError aborts a run whose plan contains divergences that must not
// be resolved silently. The operator inspects them and either fixes the
// infrastructure or re-runs apply with repair enabled.
type ConflictError struct {
	Conflicts []fleet.Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("%s (vmid %d): %s", c.Name, c.VMID, c.Reason)
	}
	return fmt.Sprintf("%d conflict(s) require operator attention: %s", len(e.Conflicts), strings.Join(parts, "; "))
}

// Result summarizes a mutating run.
type Result struct {
	Created int
	Updated int
	Deleted int
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d updated, %d deleted", r.Created, r.Updated, r.Deleted)
}

// Reconciler plans and applies fleet changes.
type Reconciler struct {
	provisioner proxmox.Provisioner
	store       state.Store
	cfg         *config.Config

	report        Reporter
	repair        bool
	enableMetrics bool

	// mu serializes record mutation and persistence across the parallel
	// node operations.
	mu sync.Mutex
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithReporter registers a progress event sink.
func WithReporter(report Reporter) Option {
	return func(r *Reconciler) {
		r.report = report
	}
}

// WithRepair lets apply clear the records of nodes that were deleted
// out-of-band, so the next diff re-creates them.
func WithRepair() Option {
	return func(r *Reconciler) {
		r.repair = true
	}
}

// WithMetrics enables Prometheus metrics recording.
func WithMetrics() Option {
	return func(r *Reconciler) {
		r.enableMetrics = true
	}
}

// New creates a Reconciler.
func New(provisioner proxmox.Provisioner, store state.Store, cfg *config.Config, opts ...Option) *Reconciler {
	r := &Reconciler{
		provisioner: provisioner,
		store:       store,
		cfg:         cfg,
		report:      func(Event) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan computes the pending changes without mutating anything. Observation
// happens exactly once; the returned plan stays valid for the caller to
// render even when it contains conflicts.
func (r *Reconciler) Plan(ctx context.Context) (*fleet.Plan, error) {
	desired, err := fleet.Derive(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("deriving fleet: %w", err)
	}

	record, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	observed, err := r.observe(ctx)
	if err != nil {
		return nil, err
	}

	return fleet.Diff(desired, observed, record.Recorded()), nil
}

// observe snapshots the managed VMs of this fleet. Unmanaged VMs on the
// same node are invisible to the diff.
func (r *Reconciler) observe(ctx context.Context) ([]fleet.ObservedVM, error) {
	vms, err := r.provisioner.ListVMs(ctx)
	if err != nil {
		return nil, fmt.Errorf("observing fleet: %w", err)
	}

	var observed []fleet.ObservedVM
	for _, vm := range vms {
		if !tags.IsManaged(vm.Tags, r.cfg.Fleet) {
			continue
		}
		observed = append(observed, fleet.ObservedVM{
			VMID:     vm.VMID,
			Name:     vm.Name,
			Cores:    vm.Cores,
			MemoryMB: vm.MemoryMB,
			DiskGB:   vm.DiskGB,
			Running:  vm.Running(),
			Tags:     vm.Tags,
		})
	}
	return observed, nil
}

// saveRecord persists the record under the reconciler's mutex. Node
// operations run in parallel but the durable record advances atomically.
func (r *Reconciler) saveRecord(ctx context.Context, record *state.Record, mutate func(*state.Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mutate(record)
	return r.store.Save(ctx, record)
}

func (r *Reconciler) emit(node, op string, phase Phase, err error) {
	r.report(Event{Node: node, Op: op, Phase: phase, Err: err})
}
