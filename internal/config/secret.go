package config

import (
	"crypto/sha256"
	"fmt"
)

// Secret is a confidential string value. Every printable form renders a
// stable, non-reversible placeholder so the raw value cannot leak through
// logs, plan output, or serialized state. Use Reveal to obtain the raw
// value at the single point it is handed to the provider.
type Secret string

// Reveal returns the raw secret value.
func (s Secret) Reveal() string {
	return string(s)
}

// IsZero reports whether the secret is unset.
func (s Secret) IsZero() bool {
	return s == ""
}

// Placeholder returns the redacted form: "sha256:" plus the first 8 hex
// characters of the value's digest. Stable across runs so diffs can tell
// "changed" from "unchanged" without exposing anything.
func (s Secret) Placeholder() string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("sha256:%x", sum[:4])
}

func (s Secret) String() string {
	return s.Placeholder()
}

// GoString keeps %#v output redacted as well.
func (s Secret) GoString() string {
	return fmt.Sprintf("config.Secret(%q)", s.Placeholder())
}

// Format implements fmt.Formatter so that every verb, including %s applied
// to the underlying string kind, goes through the placeholder.
func (s Secret) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('#') {
			fmt.Fprint(f, s.GoString())
			return
		}
		fmt.Fprint(f, s.Placeholder())
	default:
		fmt.Fprint(f, s.Placeholder())
	}
}

// MarshalYAML redacts the secret in YAML output.
func (s Secret) MarshalYAML() (interface{}, error) {
	return s.Placeholder(), nil
}

// MarshalJSON redacts the secret in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.Placeholder())), nil
}
