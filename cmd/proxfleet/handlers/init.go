package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/util/keygen"
)

// Init runs the interactive wizard and writes the fleet configuration.
// The token secret is deliberately never written; it is read from the
// environment at run time.
func Init(ctx context.Context, outputPath string) error {
	if outputPath == "" {
		outputPath = config.DefaultConfigFile
	}
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or pass a different path with -o", outputPath)
	}

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	cfg := config.FromWizard(result)

	keyFile := ""
	if result.GenerateKeys {
		pair, err := keygen.GenerateEd25519KeyPair()
		if err != nil {
			return fmt.Errorf("generating SSH key pair: %w", err)
		}
		keyFile = fmt.Sprintf("%s_ed25519", cfg.Fleet)
		if err := writeFile(keyFile, pair.PrivateKey, 0o600); err != nil {
			return fmt.Errorf("writing private key: %w", err)
		}
		if err := writeFile(keyFile+".pub", pair.PublicKey, 0o644); err != nil {
			return fmt.Errorf("writing public key: %w", err)
		}
		cfg.SSHPublicKeys = string(pair.PublicKey)
	}

	if err := writeConfigFile(cfg, outputPath); err != nil {
		return err
	}

	fmt.Printf("Wrote %s.\n\n", outputPath)
	if keyFile != "" {
		fmt.Printf("Generated SSH key pair: %s (private), %s.pub (public).\n", keyFile, keyFile)
	} else {
		fmt.Println("Add your SSH public keys to ssh_public_keys before applying.")
	}
	fmt.Println("Next steps:")
	fmt.Printf("  export %s=<your-token-secret>\n", config.EnvTokenSecret)
	fmt.Println("  proxfleet doctor")
	fmt.Println("  proxfleet plan")
	return nil
}
