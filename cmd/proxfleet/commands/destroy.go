package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/handlers"
)

// Destroy returns the command for tearing down the fleet.
//
// Destroy stops and deletes every managed VM in reverse order, then clears
// the recorded state. The confirmation prompt requires typing the fleet
// name unless --auto-approve is set.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete every VM in the fleet",
		Long: `Delete every VM in the fleet.

This command stops and deletes all managed VMs on the Proxmox node, in
reverse order, and clears the recorded state. Only VMs carrying this
fleet's tags are touched.

This is destructive and cannot be undone. You will be asked to type the
fleet name to confirm, unless --auto-approve is set.

Examples:
  # Destroy the fleet with confirmation
  proxfleet destroy

  # Destroy without the confirmation prompt
  proxfleet destroy --auto-approve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: proxfleet.yaml)")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Disable the interactive progress display")

	return cmd
}
