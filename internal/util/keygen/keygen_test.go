package keygen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/ssh"
)

func TestGenerateEd25519KeyPair(t *testing.T) {
	kp, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	assert.Contains(t, string(kp.PrivateKey), "BEGIN PRIVATE KEY")
	assert.True(t, strings.HasPrefix(string(kp.PublicKey), "ssh-ed25519 "))

	// Public key must round-trip through the authorized_keys parser.
	parsed, _, _, _, err := ssh.ParseAuthorizedKey(kp.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519", parsed.Type())
}

func TestGenerateEd25519KeyPair_Unique(t *testing.T) {
	a, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	b, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey, b.PublicKey)
}

func TestValidateAuthorizedKeys(t *testing.T) {
	kp, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	key := string(kp.PublicKey)

	tests := []struct {
		name     string
		material string
		wantErr  bool
	}{
		{"single key", key, false},
		{"trailing newline", key + "\n", false},
		{"two keys", key + key, false},
		{"garbage", "not-a-key", true},
		{"empty", "", true},
		{"whitespace only", "  \n\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthorizedKeys(tt.material)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
