// Package config defines the fleet configuration: variable inputs, defaults,
// validation, and the operation timeout knobs.
package config

// Config is the declarative description of a fleet, loaded from
// proxfleet.yaml plus environment variables.
type Config struct {
	// Fleet is the fleet name; node names, tags, and state keys derive from it.
	Fleet string `mapstructure:"fleet"`

	// Endpoint is the Proxmox VE API base URL, e.g. https://pve.lan:8006.
	Endpoint string `mapstructure:"endpoint"`

	// Node is the Proxmox node to place VMs on.
	Node string `mapstructure:"node"`

	// TokenID identifies the API token, e.g. provisioner@pam!proxfleet.
	TokenID string `mapstructure:"token_id"`

	// TokenSecret is the API token secret. Confidential: its String and
	// marshal forms render a non-reversible placeholder. May also be
	// supplied via PROXFLEET_TOKEN_SECRET.
	TokenSecret Secret `mapstructure:"token_secret"`

	// InsecureTLS skips TLS verification, for homelab hosts with
	// self-signed certificates.
	InsecureTLS bool `mapstructure:"insecure_tls"`

	// TemplateVMID is the numeric ID of the template to clone nodes from.
	TemplateVMID int `mapstructure:"template_vmid"`

	// Count is the fleet size.
	Count int `mapstructure:"count"`

	// VMIDBase is the VMID assigned to node index 0; node i gets VMIDBase+i.
	VMIDBase int `mapstructure:"vmid_base"`

	// AdminUser is the cloud-init administrative account name.
	AdminUser string `mapstructure:"admin_user"`

	// SSHPublicKeys is operator public key material in authorized_keys
	// format, injected into every node via cloud-init.
	SSHPublicKeys string `mapstructure:"ssh_public_keys"`

	Hardware Hardware `mapstructure:"hardware"`
	Network  Network  `mapstructure:"network"`
	State    State    `mapstructure:"state"`
}

// Hardware is the per-node hardware shape.
type Hardware struct {
	Cores    int    `mapstructure:"cores"`
	MemoryMB int    `mapstructure:"memory_mb"`
	DiskGB   int    `mapstructure:"disk_gb"`
	Storage  string `mapstructure:"storage"`
}

// Network is the fleet's network attachment and addressing scheme.
type Network struct {
	// Bridge is the Linux bridge VMs attach to.
	Bridge string `mapstructure:"bridge"`

	// VLAN is the 802.1q tag applied to net0. Zero means untagged.
	VLAN int `mapstructure:"vlan"`

	// Subnet is the IPv4 subnet nodes live in, e.g. 192.168.1.0/24.
	Subnet string `mapstructure:"subnet"`

	// Gateway is the default gateway pushed via cloud-init.
	Gateway string `mapstructure:"gateway"`

	// HostOffset is the host number of node index 0; node i gets
	// CIDRHost(Subnet, HostOffset+i).
	HostOffset int `mapstructure:"host_offset"`
}

// State selects and configures the state store backend.
type State struct {
	// Backend is "file" (default) or "s3".
	Backend string `mapstructure:"backend"`

	// Dir is the directory for the file backend. Defaults to the current
	// directory.
	Dir string `mapstructure:"dir"`

	S3 S3 `mapstructure:"s3"`
}

// S3 configures the S3-compatible remote state backend.
type S3 struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey Secret `mapstructure:"secret_key"`
}

// Backend names for State.Backend.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)
