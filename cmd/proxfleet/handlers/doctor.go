package handlers

import (
	"context"
	"fmt"

	"github.com/proxfleet/proxfleet/internal/config"
)

// Doctor verifies everything apply depends on and prints one line per
// check. It makes no changes.
func Doctor(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		printCheck("configuration", err)
		return fmt.Errorf("doctor found problems")
	}
	printCheck("configuration", nil)

	provisioner := newProvisioner(cfg)
	failures := 0

	run := func(name string, check func() error) {
		err := check()
		printCheck(name, err)
		if err != nil {
			failures++
		}
	}

	run(fmt.Sprintf("API connectivity (%s)", cfg.Endpoint), func() error {
		version, err := provisioner.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("       Proxmox VE %s\n", version)
		return nil
	})

	run(fmt.Sprintf("template VM %d", cfg.TemplateVMID), func() error {
		vm, err := provisioner.GetVM(ctx, cfg.TemplateVMID)
		if err != nil {
			return err
		}
		if vm == nil {
			return fmt.Errorf("VM %d does not exist on node %s", cfg.TemplateVMID, cfg.Node)
		}
		return nil
	})

	run(fmt.Sprintf("storage %q", cfg.Hardware.Storage), func() error {
		exists, err := provisioner.StorageExists(ctx, cfg.Hardware.Storage)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("storage %q does not exist on node %s", cfg.Hardware.Storage, cfg.Node)
		}
		return nil
	})

	run(fmt.Sprintf("state store (%s)", stateBackendLabel(cfg)), func() error {
		store, err := newStateStore(cfg)
		if err != nil {
			return err
		}
		_, err = store.Load(ctx)
		return err
	})

	if failures > 0 {
		return fmt.Errorf("doctor found %d problem(s)", failures)
	}
	fmt.Println("\nEverything looks good.")
	return nil
}

func printCheck(name string, err error) {
	if err != nil {
		fmt.Printf("[!!]   %s: %v\n", name, err)
		return
	}
	fmt.Printf("[OK]   %s\n", name)
}

func stateBackendLabel(cfg *config.Config) string {
	if cfg.State.Backend == config.BackendS3 {
		return fmt.Sprintf("s3://%s", cfg.State.S3.Bucket)
	}
	return "file"
}
