// Package naming derives resource names for a fleet.
//
// All names follow consistent patterns so resources are easy to identify and
// clean up. Node names embed a zero-padded index: growing the fleet must
// never renumber existing nodes, and zero-padding keeps lexical order equal
// to index order for any fleet the padding width covers.
package naming

import "fmt"

// Node returns the name of the node at the given zero-based index,
// e.g. "homelab-01" for index 0.
func Node(fleet string, index int) string {
	return fmt.Sprintf("%s-%02d", fleet, index+1)
}

// StateObject returns the state store object key for a fleet.
func StateObject(fleet string) string {
	return fmt.Sprintf("%s/state.json", fleet)
}

// LockObject returns the advisory lock object key for a fleet.
func LockObject(fleet string) string {
	return fmt.Sprintf("%s/lock", fleet)
}

// StateFile returns the local state file name for a fleet.
func StateFile(fleet string) string {
	return fmt.Sprintf("%s.state.json", fleet)
}

// LockFile returns the local lock file name for a fleet.
func LockFile(fleet string) string {
	return fmt.Sprintf("%s.lock", fleet)
}
