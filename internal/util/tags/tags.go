// Package tags builds Proxmox VM tags for fleet resources.
//
// Proxmox stores VM tags as a single semicolon-separated string. Uniform
// tagging lets the reconciler find every VM it manages with one list call
// and keeps hand-created VMs out of observation.
package tags

import (
	"sort"
	"strings"
)

// Standard tags applied to every managed VM.
const (
	// ManagedBy marks a VM as owned by proxfleet.
	ManagedBy = "proxfleet"

	// FleetPrefix namespaces the fleet-membership tag.
	FleetPrefix = "fleet-"
)

// Builder accumulates tags for a VM.
type Builder struct {
	tags map[string]struct{}
}

// NewBuilder creates a builder with the managed-by and fleet tags pre-set.
func NewBuilder(fleet string) *Builder {
	b := &Builder{tags: map[string]struct{}{}}
	b.tags[ManagedBy] = struct{}{}
	b.tags[FleetPrefix+fleet] = struct{}{}
	return b
}

// With adds an arbitrary tag.
func (b *Builder) With(tag string) *Builder {
	if tag != "" {
		b.tags[tag] = struct{}{}
	}
	return b
}

// Build returns the tags as Proxmox's semicolon-separated string, sorted for
// stable comparison.
func (b *Builder) Build() string {
	out := make([]string, 0, len(b.tags))
	for t := range b.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, ";")
}

// FleetTag returns the membership tag for a fleet.
func FleetTag(fleet string) string {
	return FleetPrefix + fleet
}

// Has reports whether the semicolon-separated tag string contains the tag.
func Has(tagString, tag string) bool {
	for _, t := range strings.Split(tagString, ";") {
		if strings.TrimSpace(t) == tag {
			return true
		}
	}
	return false
}

// IsManaged reports whether the tag string marks a proxfleet-managed VM of
// the given fleet.
func IsManaged(tagString, fleet string) bool {
	return Has(tagString, ManagedBy) && Has(tagString, FleetTag(fleet))
}
