// Package reconcile drives the fleet toward its desired state.
//
// Plan is read-only: it derives the desired fleet, observes the hypervisor
// once, and diffs against the recorded state. Apply and Destroy mutate, so
// they run under the store's advisory lock and persist every node state
// transition before and after the provider call that realizes it. A failure
// on one node never rolls back or blocks nodes that don't depend on it.
package reconcile
