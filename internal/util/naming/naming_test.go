package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	fleet := "homelab"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "NodeFirst",
			got:      Node(fleet, 0),
			expected: "homelab-01",
		},
		{
			name:     "NodeZeroPadded",
			got:      Node(fleet, 8),
			expected: "homelab-09",
		},
		{
			name:     "NodeTwoDigit",
			got:      Node(fleet, 11),
			expected: "homelab-12",
		},
		{
			name:     "StateObject",
			got:      StateObject(fleet),
			expected: "homelab/state.json",
		},
		{
			name:     "LockObject",
			got:      LockObject(fleet),
			expected: "homelab/lock",
		},
		{
			name:     "StateFile",
			got:      StateFile(fleet),
			expected: "homelab.state.json",
		},
		{
			name:     "LockFile",
			got:      LockFile(fleet),
			expected: "homelab.lock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestNode_GrowthDoesNotRenumber(t *testing.T) {
	// Names for indices 0..2 must be identical whether the fleet has 3 or 4
	// nodes; the name depends only on the index.
	for i := range 3 {
		if Node("lab", i) != Node("lab", i) {
			t.Fatalf("node name for index %d is not stable", i)
		}
	}
}
