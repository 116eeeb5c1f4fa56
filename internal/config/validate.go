package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/proxfleet/proxfleet/internal/util/keygen"
)

// fleetNameRegex validates fleet name format: 1-32 lowercase alphanumeric
// with hyphens, starting and ending alphanumeric.
var fleetNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// Validate checks the configuration for input errors. It is the fail-fast
// gate: it runs before any network call and never talks to the provider.
func (c *Config) Validate() error {
	if !fleetNameRegex.MatchString(c.Fleet) {
		return fmt.Errorf("fleet name %q is invalid: 1-32 lowercase alphanumeric characters or hyphens", c.Fleet)
	}

	if err := c.validateEndpoint(); err != nil {
		return err
	}

	if c.Node == "" {
		return fmt.Errorf("node is required")
	}
	if c.TokenID == "" {
		return fmt.Errorf("token_id is required")
	}
	if c.TokenSecret.IsZero() {
		return fmt.Errorf("token_secret is required (set it in the config file or via %s)", EnvTokenSecret)
	}
	if c.TemplateVMID <= 0 {
		return fmt.Errorf("template_vmid must be a positive VMID, got %d", c.TemplateVMID)
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}
	if c.VMIDBase < 100 {
		return fmt.Errorf("vmid_base must be >= 100 (Proxmox reserves lower IDs), got %d", c.VMIDBase)
	}
	if c.Hardware.Cores < 1 {
		return fmt.Errorf("hardware.cores must be at least 1, got %d", c.Hardware.Cores)
	}
	if c.Hardware.MemoryMB < 256 {
		return fmt.Errorf("hardware.memory_mb must be at least 256, got %d", c.Hardware.MemoryMB)
	}
	if c.Hardware.DiskGB < 1 {
		return fmt.Errorf("hardware.disk_gb must be at least 1, got %d", c.Hardware.DiskGB)
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	if c.SSHPublicKeys == "" {
		return fmt.Errorf("ssh_public_keys is required: nodes would be unreachable without key material")
	}
	if err := keygen.ValidateAuthorizedKeys(c.SSHPublicKeys); err != nil {
		return err
	}

	return c.validateState()
}

func (c *Config) validateEndpoint() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint %q is not a valid URL: %w", c.Endpoint, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("endpoint must use https, got %q", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", c.Endpoint)
	}
	return nil
}

func (c *Config) validateNetwork() error {
	n := c.Network

	if n.VLAN != 0 && (n.VLAN < 1 || n.VLAN > 4094) {
		return fmt.Errorf("network.vlan must be between 1 and 4094, got %d", n.VLAN)
	}

	_, subnet, err := net.ParseCIDR(n.Subnet)
	if err != nil {
		return fmt.Errorf("network.subnet %q is not a valid CIDR: %w", n.Subnet, err)
	}
	if subnet.IP.To4() == nil {
		return fmt.Errorf("network.subnet must be IPv4, got %q", n.Subnet)
	}

	gw := net.ParseIP(n.Gateway)
	if gw == nil || gw.To4() == nil {
		return fmt.Errorf("network.gateway %q is not a valid IPv4 address", n.Gateway)
	}
	if !subnet.Contains(gw) {
		return fmt.Errorf("network.gateway %s is outside subnet %s", n.Gateway, n.Subnet)
	}

	if n.HostOffset < 1 {
		return fmt.Errorf("network.host_offset must be at least 1, got %d", n.HostOffset)
	}

	// Every derived address must fit the subnet and avoid reserved hosts.
	reserved := map[string]string{n.Gateway: "gateway"}
	if broadcast, err := CIDRHost(n.Subnet, -1); err == nil {
		reserved[broadcast] = "broadcast address"
	}
	for i := 0; i < c.Count; i++ {
		addr, err := CIDRHost(n.Subnet, n.HostOffset+i)
		if err != nil {
			return fmt.Errorf("node %d address derivation failed: %w", i, err)
		}
		if what, ok := reserved[addr]; ok {
			return fmt.Errorf("node %d address %s collides with the %s", i, addr, what)
		}
	}

	return nil
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case BackendFile:
		return nil
	case BackendS3:
		s := c.State.S3
		var missing []string
		if s.Endpoint == "" {
			missing = append(missing, "endpoint")
		}
		if s.Bucket == "" {
			missing = append(missing, "bucket")
		}
		if s.AccessKey == "" {
			missing = append(missing, "access_key")
		}
		if s.SecretKey.IsZero() {
			missing = append(missing, "secret_key")
		}
		if len(missing) > 0 {
			return fmt.Errorf("state.s3 backend requires: %s", strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("state.backend must be %q or %q, got %q", BackendFile, BackendS3, c.State.Backend)
	}
}
