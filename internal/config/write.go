package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// configTemplate renders a fully commented configuration file. The token
// secret is deliberately absent: it comes from PROXFLEET_TOKEN_SECRET so it
// never lands on disk.
const configTemplate = `# proxfleet configuration
fleet: {{ .Fleet }}

# Proxmox VE API endpoint and placement node.
endpoint: {{ .Endpoint }}
node: {{ .Node }}

# API token identity. The secret is read from PROXFLEET_TOKEN_SECRET.
token_id: {{ .TokenID }}

# Template to clone nodes from.
template_vmid: {{ .TemplateVMID }}

# Fleet size; node i gets VMID vmid_base+i and host number host_offset+i.
count: {{ .Count }}
vmid_base: {{ .VMIDBase }}

admin_user: {{ .AdminUser }}
{{- if .SSHPublicKeys }}
ssh_public_keys: |
{{ indent 2 .SSHPublicKeys }}
{{- end }}

hardware:
  cores: {{ .Hardware.Cores }}
  memory_mb: {{ .Hardware.MemoryMB }}
  disk_gb: {{ .Hardware.DiskGB }}
  storage: {{ .Hardware.Storage }}

network:
  bridge: {{ .Network.Bridge }}
{{- if .Network.VLAN }}
  vlan: {{ .Network.VLAN }}
{{- end }}
  subnet: {{ .Network.Subnet }}
  gateway: {{ .Network.Gateway }}
  host_offset: {{ .Network.HostOffset }}

state:
  backend: {{ .State.Backend }}
{{- if eq .State.Backend "file" }}
  dir: {{ .State.Dir }}
{{- else }}
  s3:
    endpoint: {{ .State.S3.Endpoint }}
    region: {{ .State.S3.Region }}
    bucket: {{ .State.S3.Bucket }}
    access_key: {{ .State.S3.AccessKey }}
    # secret_key comes from the file only; prefer an env-specific override.
{{- end }}
`

// WriteYAML renders the configuration file. Secrets are never written.
func WriteYAML(cfg *Config, path string) error {
	tmpl, err := template.New("config").Funcs(template.FuncMap{
		"indent": indentLines,
	}).Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("parsing config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FromWizard expands wizard answers into a full configuration with defaults.
func FromWizard(result *WizardResult) *Config {
	cfg := &Config{
		Fleet:        result.Fleet,
		Endpoint:     result.Endpoint,
		Node:         result.Node,
		TokenID:      result.TokenID,
		TemplateVMID: result.TemplateVMID,
		Count:        result.Count,
		Network: Network{
			Subnet:     result.Subnet,
			Gateway:    result.Gateway,
			HostOffset: result.HostOffset,
		},
	}
	applyDefaults(cfg)
	return cfg
}

func indentLines(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
