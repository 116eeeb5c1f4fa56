// Package keygen generates SSH key pairs for node access.
//
// The private key is PEM-encoded PKCS#8; the public key is in OpenSSH
// authorized_keys format, ready for cloud-init injection.
package keygen

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds an SSH key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the PEM-encoded PKCS#8 private key.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateEd25519KeyPair generates a new ed25519 key pair.
func GenerateEd25519KeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privDER,
	})

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(sshPub),
	}, nil
}

// ValidateAuthorizedKeys checks that every line of the given key material
// parses as an OpenSSH public key. Blank lines are permitted.
func ValidateAuthorizedKeys(material string) error {
	rest := bytes.TrimSpace([]byte(material))
	parsed := 0
	for len(rest) > 0 {
		key, _, _, remaining, err := ssh.ParseAuthorizedKey(rest)
		if err != nil {
			return fmt.Errorf("invalid public key material: %w", err)
		}
		if key != nil {
			parsed++
		}
		rest = bytes.TrimSpace(remaining)
	}
	if parsed == 0 {
		return fmt.Errorf("no public keys found in key material")
	}
	return nil
}
