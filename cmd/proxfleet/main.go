// Package main is the entry point for the proxfleet CLI.
//
// proxfleet is a command-line tool for running a fleet of identical VMs on
// a Proxmox VE node. It clones a cloud-init template into numbered nodes
// with deterministic names and addresses, and reconciles the fleet against
// a declarative configuration without requiring Terraform.
//
// Commands: init, plan, apply, destroy, output, doctor.
//
// For detailed usage information, run:
//
//	proxfleet --help
package main

import (
	"fmt"
	"os"

	"github.com/proxfleet/proxfleet/cmd/proxfleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
