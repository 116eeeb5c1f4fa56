package handlers

import (
	"context"
	"fmt"

	"github.com/proxfleet/proxfleet/internal/reconcile"
	"github.com/proxfleet/proxfleet/internal/ui/tui"
)

// Plan previews the changes apply would make, without changing anything.
func Plan(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := newStateStore(cfg)
	if err != nil {
		return err
	}

	rec := reconcile.New(newProvisioner(cfg), store, cfg)
	plan, err := rec.Plan(ctx)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	fmt.Println(tui.RenderPlan(plan))
	return nil
}
