package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/handlers"
)

// Plan returns the command for previewing fleet changes.
//
// Plan compares the configuration, the recorded state, and the VMs actually
// present on the Proxmox node, then prints what apply would do. It never
// changes anything.
//
// Optional flags:
//
//	--config, -c: Path to fleet configuration YAML file (default: auto-detect proxfleet.yaml)
func Plan() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the changes apply would make",
		Long: `Preview the changes apply would make.

This command compares the fleet configuration against the recorded state
and the VMs actually present on the Proxmox node. It prints the nodes that
would be created, updated or deleted, and reports conflicts such as VMs
that were removed outside of proxfleet. It makes no changes.

Examples:
  # Preview changes using proxfleet.yaml in current directory
  proxfleet plan

  # Preview changes using a specific config file
  proxfleet plan -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: proxfleet.yaml)")

	return cmd
}
