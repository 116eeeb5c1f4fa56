package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_Build(t *testing.T) {
	got := NewBuilder("homelab").Build()
	assert.Equal(t, "fleet-homelab;proxfleet", got)
}

func TestBuilder_WithExtraTag(t *testing.T) {
	got := NewBuilder("homelab").With("k3s").Build()
	assert.Equal(t, "fleet-homelab;k3s;proxfleet", got)
}

func TestBuilder_EmptyTagIgnored(t *testing.T) {
	got := NewBuilder("homelab").With("").Build()
	assert.Equal(t, "fleet-homelab;proxfleet", got)
}

func TestBuilder_Deduplicates(t *testing.T) {
	got := NewBuilder("homelab").With("k3s").With("k3s").Build()
	assert.Equal(t, "fleet-homelab;k3s;proxfleet", got)
}

func TestHas(t *testing.T) {
	tests := []struct {
		name      string
		tagString string
		tag       string
		want      bool
	}{
		{"present", "proxfleet;fleet-homelab", "proxfleet", true},
		{"absent", "proxfleet;fleet-homelab", "fleet-other", false},
		{"no substring match", "proxfleet-extra", "proxfleet", false},
		{"whitespace tolerated", "proxfleet; fleet-homelab", "fleet-homelab", true},
		{"empty string", "", "proxfleet", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Has(tt.tagString, tt.tag))
		})
	}
}

func TestIsManaged(t *testing.T) {
	assert.True(t, IsManaged("fleet-homelab;proxfleet", "homelab"))
	assert.False(t, IsManaged("fleet-homelab", "homelab"))
	assert.False(t, IsManaged("fleet-other;proxfleet", "homelab"))
}
