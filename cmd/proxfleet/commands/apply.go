package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/handlers"
)

// Apply returns the command for converging the fleet.
//
// Apply clones, reconfigures and deletes VMs until the fleet on the Proxmox
// node matches the configuration. Runs are idempotent: applying twice in a
// row makes no changes on the second run.
//
// Optional flags:
//
//	--config, -c:   Path to fleet configuration YAML file (default: auto-detect proxfleet.yaml)
//	--auto-approve: Skip the interactive confirmation prompt
//	--repair:       Re-create VMs that were deleted outside of proxfleet
//	--plain:        Disable the interactive progress display
//
// Environment variables:
//
//	PROXFLEET_TOKEN_SECRET: Proxmox API token secret (required)
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the fleet",
		Long: `Create or update the fleet.

This command converges the VMs on the Proxmox node to match the fleet
configuration: missing nodes are cloned from the template, drifted nodes
are reconfigured, and surplus nodes are deleted. A plan is shown and
confirmed before any change is made.

Conflicts, such as a VM deleted outside of proxfleet, stop the run.
Pass --repair to re-create such nodes instead.

Examples:
  # Converge the fleet using proxfleet.yaml in current directory
  proxfleet apply

  # Converge without the confirmation prompt
  proxfleet apply --auto-approve

  # Re-create nodes that were deleted out of band
  proxfleet apply --repair`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: proxfleet.yaml)")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "Re-create VMs deleted outside of proxfleet")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Disable the interactive progress display")

	return cmd
}
