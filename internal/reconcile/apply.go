package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/proxfleet/proxfleet/internal/fleet"
	"github.com/proxfleet/proxfleet/internal/platform/proxmox"
	"github.com/proxfleet/proxfleet/internal/state"
	"github.com/proxfleet/proxfleet/internal/util/async"
)

// Apply drives the fleet to its desired state under the advisory lock.
//
// Every node's state transition is persisted before and after the provider
// calls that realize it, so an interrupted run leaves a record the next run
// resumes from. Independent nodes are created and updated in parallel;
// deletions unwind sequentially in reverse creation order.
func (r *Reconciler) Apply(ctx context.Context, holder string) (result *Result, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		r.recordRun("apply", outcome, time.Since(start).Seconds())
	}()

	if err := r.store.Lock(ctx, state.LockInfo{Holder: holder, Operation: "apply"}); err != nil {
		return nil, err
	}
	defer func() {
		if uerr := r.store.Unlock(ctx); uerr != nil && err == nil {
			err = uerr
		}
	}()

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

	plan := fleet.Diff(desired, observed, record.Recorded())
	if len(plan.Conflicts) > 0 && r.repair {
		plan, err = r.repairConflicts(ctx, record, desired, observed, plan)
		if err != nil {
			return nil, err
		}
	}
	if len(plan.Conflicts) > 0 {
		return nil, &ConflictError{Conflicts: plan.Conflicts}
	}

	result = &Result{}
	var errs []error

	tasks := make([]async.Task, 0, len(plan.Creates)+len(plan.Updates))
	for _, node := range plan.Creates {
		tasks = append(tasks, async.Task{Name: node.Name, Func: func(ctx context.Context) error {
			if err := r.createNode(ctx, record, node); err != nil {
				return err
			}
			r.count(&result.Created)
			return nil
		}})
	}
	for _, update := range plan.Updates {
		tasks = append(tasks, async.Task{Name: update.Node.Name, Func: func(ctx context.Context) error {
			if err := r.updateNode(ctx, record, update); err != nil {
				return err
			}
			r.count(&result.Updated)
			return nil
		}})
	}
	if err := async.RunParallel(ctx, tasks); err != nil {
		errs = append(errs, err)
	}

	// Converged per observation, but the record may disagree after an
	// interrupted or failed run.
	for _, node := range plan.Noops {
		if err := r.resumeNode(ctx, record, node); err != nil {
			errs = append(errs, err)
		}
	}

	for _, vm := range plan.Deletes {
		if err := r.deleteNode(ctx, record, vm); err != nil {
			errs = append(errs, err)
			continue
		}
		result.Deleted++
	}

	r.recordNodeCounts(len(desired), len(plan.Noops))

	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	return result, nil
}

// repairConflicts clears the records of nodes that vanished out-of-band so
// the diff plans them as fresh creates. Conflicts whose VM still exists,
// like a requested disk shrink, stay unrepairable.
func (r *Reconciler) repairConflicts(ctx context.Context, record *state.Record, desired []fleet.Node, observed []fleet.ObservedVM, plan *fleet.Plan) (*fleet.Plan, error) {
	observedNames := make(map[string]struct{}, len(observed))
	for _, vm := range observed {
		observedNames[vm.Name] = struct{}{}
	}

	repaired := false
	for _, c := range plan.Conflicts {
		if _, stillThere := observedNames[c.Name]; stillThere {
			continue
		}
		r.emit(c.Name, "repair", PhaseDone, nil)
		if err := r.saveRecord(ctx, record, func(rec *state.Record) {
			rec.RemoveNode(c.Name)
		}); err != nil {
			return nil, err
		}
		repaired = true
	}

	if !repaired {
		return plan, nil
	}
	return fleet.Diff(desired, observed, record.Recorded()), nil
}

func (r *Reconciler) createNode(ctx context.Context, record *state.Record, node fleet.Node) error {
	r.emit(node.Name, "create", PhaseStart, nil)

	if err := r.saveRecord(ctx, record, func(rec *state.Record) {
		rec.SetNode(node.Name, state.NodeRecord{
			Index:   node.Index,
			VMID:    node.VMID,
			Address: node.Address,
			State:   fleet.StatePendingCreate,
		})
	}); err != nil {
		return err
	}

	err := r.provisioner.CloneVM(ctx, proxmox.CloneOpts{
		TemplateVMID: node.TemplateVMID,
		VMID:         node.VMID,
		Name:         node.Name,
		Storage:      node.Storage,
		Full:         true,
	})
	if err == nil {
		err = r.configureAndStart(ctx, node)
	}
	if err != nil {
		r.failNode(ctx, record, node.Name, "create", err)
		return fmt.Errorf("creating %s: %w", node.Name, err)
	}

	if err := r.transition(ctx, record, node.Name, fleet.StateActive, ""); err != nil {
		return err
	}
	r.emit(node.Name, "create", PhaseDone, nil)
	r.recordNodeOperation("create", "success")
	return nil
}

func (r *Reconciler) updateNode(ctx context.Context, record *state.Record, update fleet.Update) error {
	node := update.Node
	r.emit(node.Name, "update", PhaseStart, nil)

	r.adoptIfUnrecorded(record, node)
	if err := r.transition(ctx, record, node.Name, fleet.StatePendingUpdate, ""); err != nil {
		return err
	}

	err := r.applyNodeChanges(ctx, node, update.Current)
	if err != nil {
		r.failNode(ctx, record, node.Name, "update", err)
		return fmt.Errorf("updating %s: %w", node.Name, err)
	}

	if err := r.transition(ctx, record, node.Name, fleet.StateActive, ""); err != nil {
		return err
	}
	r.emit(node.Name, "update", PhaseDone, nil)
	r.recordNodeOperation("update", "success")
	return nil
}

// resumeNode reconciles the record of a node whose VM already matches the
// desired state. After an interrupted run a node can be observed as
// converged while its record still says pending or failed.
func (r *Reconciler) resumeNode(ctx context.Context, record *state.Record, node fleet.Node) error {
	r.mu.Lock()
	rec, recorded := record.Nodes[node.Name]
	r.mu.Unlock()

	if !recorded {
		// Exists and converged but never recorded: adopt it as-is.
		return r.saveRecord(ctx, record, func(r *state.Record) {
			r.SetNode(node.Name, state.NodeRecord{
				Index:   node.Index,
				VMID:    node.VMID,
				Address: node.Address,
				State:   fleet.StateActive,
			})
		})
	}
	if rec.State == fleet.StateActive {
		return nil
	}

	r.emit(node.Name, "resume", PhaseStart, nil)

	if rec.State == fleet.StatePendingDelete {
		if err := r.transition(ctx, record, node.Name, fleet.StateFailed, "delete interrupted while node still desired"); err != nil {
			return err
		}
		rec.State = fleet.StateFailed
	}
	if rec.State == fleet.StateFailed {
		if err := r.transition(ctx, record, node.Name, fleet.StatePendingUpdate, ""); err != nil {
			return err
		}
	}

	// Re-run the configuration steps; they are idempotent against an
	// already-configured VM.
	if err := r.configureAndStart(ctx, node); err != nil {
		r.failNode(ctx, record, node.Name, "resume", err)
		return fmt.Errorf("resuming %s: %w", node.Name, err)
	}

	if err := r.transition(ctx, record, node.Name, fleet.StateActive, ""); err != nil {
		return err
	}
	r.emit(node.Name, "resume", PhaseDone, nil)
	return nil
}

// configureAndStart applies cloud-init and hardware configuration, grows the
// disk when needed, and powers the node on.
func (r *Reconciler) configureAndStart(ctx context.Context, node fleet.Node) error {
	err := r.provisioner.ConfigureVM(ctx, node.VMID, proxmox.ConfigOpts{
		Cores:     node.Cores,
		MemoryMB:  node.MemoryMB,
		Net0:      proxmox.BuildNet0(node.Bridge, node.VLAN),
		IPConfig0: proxmox.BuildIPConfig0(node.CIDR(), node.Gateway),
		CIUser:    node.AdminUser,
		SSHKeys:   node.SSHPublicKeys,
		Tags:      node.Tags,
	})
	if err != nil {
		return err
	}

	vm, err := r.provisioner.GetVM(ctx, node.VMID)
	if err != nil {
		return err
	}
	if vm != nil && vm.DiskGB > 0 && node.DiskGB > vm.DiskGB {
		if err := r.provisioner.ResizeDisk(ctx, node.VMID, node.DiskGB); err != nil {
			return err
		}
	}

	return r.provisioner.StartVM(ctx, node.VMID)
}

// applyNodeChanges converges an existing VM's attributes in place.
func (r *Reconciler) applyNodeChanges(ctx context.Context, node fleet.Node, current fleet.ObservedVM) error {
	if node.Cores != current.Cores || node.MemoryMB != current.MemoryMB {
		err := r.provisioner.ConfigureVM(ctx, node.VMID, proxmox.ConfigOpts{
			Cores:    node.Cores,
			MemoryMB: node.MemoryMB,
		})
		if err != nil {
			return err
		}
	}
	if current.DiskGB > 0 && node.DiskGB > current.DiskGB {
		if err := r.provisioner.ResizeDisk(ctx, node.VMID, node.DiskGB); err != nil {
			return err
		}
	}
	if !current.Running {
		return r.provisioner.StartVM(ctx, node.VMID)
	}
	return nil
}

// transition validates and persists a node state change.
func (r *Reconciler) transition(ctx context.Context, record *state.Record, name string, to fleet.NodeState, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := fleet.StateAbsent
	if rec, ok := record.Nodes[name]; ok {
		current = rec.State
	}
	if _, err := current.Transition(to); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	record.SetState(name, to, message)
	return r.store.Save(ctx, record)
}

// failNode records a node failure. The original error is what the caller
// surfaces; persistence problems here must not mask it.
func (r *Reconciler) failNode(ctx context.Context, record *state.Record, name, op string, cause error) {
	r.emit(name, op, PhaseFailed, cause)
	r.recordNodeOperation(op, "error")
	_ = r.transition(ctx, record, name, fleet.StateFailed, cause.Error())
}

// adoptIfUnrecorded backfills a record entry for an observed VM that
// predates the state store.
func (r *Reconciler) adoptIfUnrecorded(record *state.Record, node fleet.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := record.Nodes[node.Name]; !ok {
		record.SetNode(node.Name, state.NodeRecord{
			Index:   node.Index,
			VMID:    node.VMID,
			Address: node.Address,
			State:   fleet.StateActive,
		})
	}
}

func (r *Reconciler) count(field *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*field++
}
