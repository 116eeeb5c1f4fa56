package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/proxfleet/proxfleet/internal/fleet"
	"github.com/proxfleet/proxfleet/internal/state"
)

// Destroy tears the whole fleet down under the advisory lock. Nodes unwind
// in reverse name order, each one stopped before deletion, and records drop
// only after the provider confirms the VM is gone. A destroy of an already
// empty fleet succeeds without provider calls.
func (r *Reconciler) Destroy(ctx context.Context, holder string) (result *Result, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		r.recordRun("destroy", outcome, time.Since(start).Seconds())
	}()

	if err := r.store.Lock(ctx, state.LockInfo{Holder: holder, Operation: "destroy"}); err != nil {
		return nil, err
	}
	defer func() {
		if uerr := r.store.Unlock(ctx); uerr != nil && err == nil {
			err = uerr
		}
	}()

	record, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	observed, err := r.observe(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(observed, func(i, j int) bool {
		return observed[i].Name > observed[j].Name
	})

	result = &Result{}
	var errs []error
	for _, vm := range observed {
		if err := r.deleteNode(ctx, record, vm); err != nil {
			errs = append(errs, err)
			continue
		}
		result.Deleted++
	}

	// Records of VMs that are already gone, including nodes deleted
	// out-of-band: destroy's intent is absence, so they just drop.
	if len(errs) == 0 && len(record.Nodes) > 0 {
		names := make([]string, 0, len(record.Nodes))
		for name := range record.Nodes {
			names = append(names, name)
		}
		if err := r.saveRecord(ctx, record, func(rec *state.Record) {
			for _, name := range names {
				rec.RemoveNode(name)
			}
		}); err != nil {
			errs = append(errs, err)
		}
	}

	r.recordNodeCounts(0, 0)

	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	return result, nil
}

// deleteNode stops and deletes one VM, then drops its record.
func (r *Reconciler) deleteNode(ctx context.Context, record *state.Record, vm fleet.ObservedVM) error {
	r.emit(vm.Name, "delete", PhaseStart, nil)

	r.mu.Lock()
	rec, recorded := record.Nodes[vm.Name]
	r.mu.Unlock()
	if recorded && rec.State == fleet.StateFailed {
		// failed -> pending-delete is the retry path out of a stuck node.
		if err := r.transition(ctx, record, vm.Name, fleet.StatePendingDelete, ""); err != nil {
			return err
		}
	} else if err := r.markPendingDelete(ctx, record, vm); err != nil {
		return err
	}

	var err error
	if vm.Running {
		err = r.provisioner.StopVM(ctx, vm.VMID)
	}
	if err == nil {
		err = r.provisioner.DeleteVM(ctx, vm.VMID)
	}
	if err != nil {
		r.failNode(ctx, record, vm.Name, "delete", err)
		return fmt.Errorf("deleting %s: %w", vm.Name, err)
	}

	if err := r.saveRecord(ctx, record, func(rec *state.Record) {
		rec.RemoveNode(vm.Name)
	}); err != nil {
		return err
	}
	r.emit(vm.Name, "delete", PhaseDone, nil)
	r.recordNodeOperation("delete", "success")
	return nil
}

// markPendingDelete records the intent to delete. A VM that was never
// recorded, or whose record is still in a pending state, gets a record
// normalized to active first so the transition stays legal.
func (r *Reconciler) markPendingDelete(ctx context.Context, record *state.Record, vm fleet.ObservedVM) error {
	r.mu.Lock()
	rec, ok := record.Nodes[vm.Name]
	if !ok || rec.State.Pending() {
		rec.VMID = vm.VMID
		rec.State = fleet.StateActive
		record.Nodes[vm.Name] = rec
	}
	r.mu.Unlock()

	return r.transition(ctx, record, vm.Name, fleet.StatePendingDelete, "")
}
