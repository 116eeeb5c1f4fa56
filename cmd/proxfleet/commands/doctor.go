package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/handlers"
)

// Doctor returns the command for checking the environment before an apply.
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and Proxmox connectivity",
		Long: `Check configuration and Proxmox connectivity.

This command verifies everything apply depends on: the configuration file
parses and validates, the API token authenticates, the template VM exists,
the target storage is available, and the state store is reachable. Nothing
is changed.

Examples:
  # Check the environment using proxfleet.yaml in current directory
  proxfleet doctor`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: proxfleet.yaml)")

	return cmd
}
