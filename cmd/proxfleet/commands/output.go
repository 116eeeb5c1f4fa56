package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/handlers"
)

// Output returns the command for printing the recorded fleet state.
//
// Output reads the state store only; it never contacts the Proxmox API.
// The token secret is never included in any format.
func Output() *cobra.Command {
	var opts handlers.OutputOptions

	cmd := &cobra.Command{
		Use:   "output",
		Short: "Print the recorded fleet state",
		Long: `Print the recorded fleet state.

This command prints the nodes proxfleet last recorded: name, VMID,
address and state. It reads only the state store and does not contact
the Proxmox API, so it reflects the last apply, not the live node.

Examples:
  # Print the fleet as a table
  proxfleet output

  # Print the fleet as JSON for scripting
  proxfleet output --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Output(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: proxfleet.yaml)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json or yaml")

	return cmd
}
