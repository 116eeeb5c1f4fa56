package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Fleet        string
	Endpoint     string
	Node         string
	TokenID      string
	TemplateVMID int
	Count        int
	Subnet       string
	Gateway      string
	HostOffset   int
	GenerateKeys bool
}

// form builds the question form plus a finish func that parses the numeric
// text inputs back into the result.
func (r *WizardResult) form() (*huh.Form, func()) {
	templateStr := "9000"
	countStr := "3"
	offsetStr := "21"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Fleet name").
				Description("A unique name for this fleet (DNS-safe, lowercase)").
				Placeholder("homelab").
				Value(&r.Fleet).
				Validate(validateFleetName),
			huh.NewInput().
				Title("Proxmox API endpoint").
				Description("Base URL of the Proxmox VE API, e.g. https://pve.lan:8006").
				Placeholder("https://pve.lan:8006").
				Value(&r.Endpoint).
				Validate(validateEndpointInput),
			huh.NewInput().
				Title("Proxmox node").
				Description("Node name VMs are placed on").
				Placeholder("pve").
				Value(&r.Node).
				Validate(required("node")),
			huh.NewInput().
				Title("API token ID").
				Description("Token identity, e.g. provisioner@pam!proxfleet (secret comes from PROXFLEET_TOKEN_SECRET)").
				Placeholder("provisioner@pam!proxfleet").
				Value(&r.TokenID).
				Validate(required("token id")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Template VMID").
				Description("Numeric ID of the cloud-init template to clone").
				Value(&templateStr).
				Validate(validatePositiveInt("template VMID")),
			huh.NewInput().
				Title("Fleet size").
				Description("Number of nodes to run").
				Value(&countStr).
				Validate(validatePositiveInt("fleet size")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Subnet").
				Description("IPv4 subnet the nodes live in").
				Placeholder("192.168.1.0/24").
				Value(&r.Subnet).
				Validate(required("subnet")),
			huh.NewInput().
				Title("Gateway").
				Placeholder("192.168.1.1").
				Value(&r.Gateway).
				Validate(required("gateway")),
			huh.NewInput().
				Title("First host number").
				Description("Host number of node 1; node i gets host number +i-1").
				Value(&offsetStr).
				Validate(validatePositiveInt("host number")),
			huh.NewConfirm().
				Title("Generate an SSH keypair for the fleet?").
				Value(&r.GenerateKeys),
		),
	).WithShowHelp(false), func() {
		r.TemplateVMID, _ = strconv.Atoi(templateStr)
		r.Count, _ = strconv.Atoi(countStr)
		r.HostOffset, _ = strconv.Atoi(offsetStr)
	}
}

// RunWizard asks the handful of questions a fresh fleet needs. Everything
// else gets a default the operator can edit in the written file.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		TemplateVMID: 9000,
		Count:        3,
		HostOffset:   21,
		GenerateKeys: true,
	}

	form, finish := result.form()
	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}
	finish()
	return result, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateFleetName(s string) error {
	if !fleetNameRegex.MatchString(s) {
		return fmt.Errorf("must be lowercase alphanumeric with hyphens, at most 32 characters")
	}
	return nil
}

func validateEndpointInput(s string) error {
	if !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("endpoint must be an https:// URL")
	}
	return nil
}

func validatePositiveInt(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", field)
		}
		return nil
	}
}
