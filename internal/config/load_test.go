package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/util/keygen"
)

func testPublicKey(t *testing.T) string {
	t.Helper()
	kp, err := keygen.GenerateEd25519KeyPair()
	require.NoError(t, err)
	return string(kp.PublicKey)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proxfleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func minimalYAML(pubKey string) string {
	return fmt.Sprintf(`fleet: homelab
endpoint: https://pve.lan:8006
node: pve
token_id: provisioner@pam!proxfleet
token_secret: raw-token-secret
template_vmid: 9000
count: 3
network:
  subnet: 192.168.1.0/24
  gateway: 192.168.1.1
ssh_public_keys: |
  %s`, pubKey)
}

func TestLoadFile_MinimalWithDefaults(t *testing.T) {
	path := writeConfig(t, minimalYAML(testPublicKey(t)))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "homelab", cfg.Fleet)
	assert.Equal(t, 3, cfg.Count)
	assert.Equal(t, 2, cfg.Hardware.Cores)
	assert.Equal(t, 4096, cfg.Hardware.MemoryMB)
	assert.Equal(t, 20, cfg.Hardware.DiskGB)
	assert.Equal(t, "local-lvm", cfg.Hardware.Storage)
	assert.Equal(t, "vmbr0", cfg.Network.Bridge)
	assert.Equal(t, 21, cfg.Network.HostOffset)
	assert.Equal(t, 200, cfg.VMIDBase)
	assert.Equal(t, "ops", cfg.AdminUser)
	assert.Equal(t, BackendFile, cfg.State.Backend)
	assert.Equal(t, "raw-token-secret", cfg.TokenSecret.Reveal())
}

func TestLoadFile_ExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(`fleet: lab
endpoint: https://10.0.0.5:8006
node: pve2
token_id: root@pam!tok
token_secret: s
template_vmid: 9001
count: 1
vmid_base: 400
admin_user: admin
hardware:
  cores: 8
  memory_mb: 16384
  disk_gb: 100
  storage: ceph-pool
network:
  bridge: vmbr1
  vlan: 40
  subnet: 10.10.40.0/24
  gateway: 10.10.40.1
  host_offset: 50
ssh_public_keys: |
  %s`, testPublicKey(t)))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Hardware.Cores)
	assert.Equal(t, "ceph-pool", cfg.Hardware.Storage)
	assert.Equal(t, "vmbr1", cfg.Network.Bridge)
	assert.Equal(t, 40, cfg.Network.VLAN)
	assert.Equal(t, 50, cfg.Network.HostOffset)
	assert.Equal(t, 400, cfg.VMIDBase)
	assert.Equal(t, "admin", cfg.AdminUser)
}

func TestLoadFile_TokenSecretFromEnv(t *testing.T) {
	pub := testPublicKey(t)
	yaml := fmt.Sprintf(`fleet: homelab
endpoint: https://pve.lan:8006
node: pve
token_id: provisioner@pam!proxfleet
template_vmid: 9000
count: 1
network:
  subnet: 192.168.1.0/24
  gateway: 192.168.1.1
ssh_public_keys: |
  %s`, pub)
	path := writeConfig(t, yaml)

	t.Setenv(EnvTokenSecret, "env-secret")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.TokenSecret.Reveal())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "fleet: [unclosed")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_ValidationFailureSurfaces(t *testing.T) {
	// count 0 must fail before anything else happens
	path := writeConfig(t, fmt.Sprintf(`fleet: homelab
endpoint: https://pve.lan:8006
node: pve
token_id: t
token_secret: s
template_vmid: 9000
count: 0
network:
  subnet: 192.168.1.0/24
  gateway: 192.168.1.1
ssh_public_keys: |
  %s`, testPublicKey(t)))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count")
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := FindConfigFile()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("x"), 0o600))
	path, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigFile, path)
}
