package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/proxfleet/proxfleet/internal/reconcile"
	"github.com/proxfleet/proxfleet/internal/ui/tui"
)

// ApplyOptions are the flags accepted by the apply command.
type ApplyOptions struct {
	ConfigPath  string
	AutoApprove bool
	Repair      bool
	Plain       bool
}

// Apply converges the fleet to match the configuration.
//
// The workflow mirrors plan-then-apply: the plan is computed and shown
// first, the operator confirms it, and only then are changes made. Runs
// are idempotent, so re-running after a partial failure finishes the
// remaining nodes.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	store, err := newStateStore(cfg)
	if err != nil {
		return err
	}
	provisioner := newProvisioner(cfg)

	plan, err := reconcile.New(provisioner, store, cfg).Plan(ctx)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	fmt.Println(tui.RenderPlan(plan))

	if len(plan.Conflicts) > 0 && !opts.Repair {
		return fmt.Errorf("%d conflict(s) need attention: resolve them on the Proxmox node, or re-run with --repair to re-create VMs deleted out of band", len(plan.Conflicts))
	}
	if plan.Empty() && len(plan.Conflicts) == 0 {
		return nil
	}

	if !opts.AutoApprove {
		confirmed, err := confirmApply(ctx, cfg.Fleet, plan.Summary())
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Apply cancelled.")
			return nil
		}
	}

	maybeServeMetrics()

	recOpts := []reconcile.Option{reconcile.WithMetrics()}
	if opts.Repair {
		recOpts = append(recOpts, reconcile.WithRepair())
	}

	result, err := runWithProgress(ctx, cfg, "apply", opts.Plain,
		func(reporter reconcile.Reporter) *reconcile.Reconciler {
			return reconcile.New(provisioner, store, cfg,
				append(recOpts, reconcile.WithReporter(reporter))...)
		},
		func(rec *reconcile.Reconciler) (*reconcile.Result, error) {
			return rec.Apply(ctx, lockHolder())
		},
	)
	if err != nil {
		var conflictErr *reconcile.ConflictError
		if errors.As(err, &conflictErr) {
			return fmt.Errorf("apply stopped: %w", err)
		}
		if result != nil {
			fmt.Printf("Apply partially failed after %s.\n", result)
		}
		return fmt.Errorf("apply failed: %w", err)
	}

	fmt.Printf("Apply complete: %s.\n", result)
	return nil
}

func confirmApply(ctx context.Context, fleetName, summary string) (bool, error) {
	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Apply to fleet %q?", fleetName)).
			Description(summary).
			Affirmative("Apply").
			Negative("Cancel").
			Value(&confirmed),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return confirmed, nil
}
