package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/handlers"
)

// Init returns the command for creating a fleet configuration.
//
// Init runs an interactive wizard and writes proxfleet.yaml. The token
// secret is never written to the file; it is read from the
// PROXFLEET_TOKEN_SECRET environment variable at run time.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fleet configuration interactively",
		Long: `Create a fleet configuration interactively.

This command walks through the Proxmox connection, the template to clone
and the network layout, then writes a commented proxfleet.yaml. It can
also generate an SSH key pair for node access.

The API token secret is never written to the file. Export it as
PROXFLEET_TOKEN_SECRET before running plan or apply.

Examples:
  # Create proxfleet.yaml in the current directory
  proxfleet init

  # Write the configuration to a different path
  proxfleet init -o fleets/homelab.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to write the configuration to (default: proxfleet.yaml)")

	return cmd
}
