package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/proxfleet/proxfleet/internal/reconcile"
)

// DestroyOptions are the flags accepted by the destroy command.
type DestroyOptions struct {
	ConfigPath  string
	AutoApprove bool
	Plain       bool
}

// Destroy deletes every managed VM in the fleet and clears the recorded
// state. The confirmation prompt requires typing the fleet name, because
// there is no undo.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	store, err := newStateStore(cfg)
	if err != nil {
		return err
	}
	provisioner := newProvisioner(cfg)

	if !opts.AutoApprove {
		confirmed, err := confirmDestroy(ctx, cfg.Fleet)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Destroy cancelled.")
			return nil
		}
	}

	maybeServeMetrics()

	result, err := runWithProgress(ctx, cfg, "destroy", opts.Plain,
		func(reporter reconcile.Reporter) *reconcile.Reconciler {
			return reconcile.New(provisioner, store, cfg,
				reconcile.WithMetrics(), reconcile.WithReporter(reporter))
		},
		func(rec *reconcile.Reconciler) (*reconcile.Result, error) {
			return rec.Destroy(ctx, lockHolder())
		},
	)
	if err != nil {
		if result != nil && result.Deleted > 0 {
			fmt.Printf("Destroy partially failed after deleting %d node(s); re-run to finish.\n", result.Deleted)
		}
		return fmt.Errorf("destroy failed: %w", err)
	}

	fmt.Printf("Destroy complete: %d node(s) deleted.\n", result.Deleted)
	return nil
}

func confirmDestroy(ctx context.Context, fleetName string) (bool, error) {
	var typed string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Destroy fleet %q?", fleetName)).
			Description(fmt.Sprintf("This deletes every VM in the fleet and cannot be undone.\nType %q to confirm.", fleetName)).
			Value(&typed),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return typed == fleetName, nil
}
