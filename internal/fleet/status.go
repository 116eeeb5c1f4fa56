package fleet

import "fmt"

// NodeState is a node's position in its provisioning lifecycle.
type NodeState string

// Lifecycle states. A node moves absent → pending-create → active, cycles
// through pending-update for in-place changes, and leaves through
// pending-delete. Failed is reachable from any pending state; a retry
// re-enters the pending state the failure interrupted.
const (
	StateAbsent        NodeState = "absent"
	StatePendingCreate NodeState = "pending-create"
	StateActive        NodeState = "active"
	StatePendingUpdate NodeState = "pending-update"
	StatePendingDelete NodeState = "pending-delete"
	StateFailed        NodeState = "failed"
)

var transitions = map[NodeState][]NodeState{
	StateAbsent:        {StatePendingCreate},
	StatePendingCreate: {StateActive, StateFailed},
	StateActive:        {StatePendingUpdate, StatePendingDelete},
	StatePendingUpdate: {StateActive, StateFailed},
	StatePendingDelete: {StateAbsent, StateFailed},
	StateFailed:        {StatePendingCreate, StatePendingUpdate, StatePendingDelete},
}

// CanTransition reports whether moving from s to next is legal.
func (s NodeState) CanTransition(next NodeState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates and returns the next state.
func (s NodeState) Transition(next NodeState) (NodeState, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("illegal node state transition %s -> %s", s, next)
	}
	return next, nil
}

// Pending reports whether the state is one of the pending-* states.
func (s NodeState) Pending() bool {
	switch s {
	case StatePendingCreate, StatePendingUpdate, StatePendingDelete:
		return true
	default:
		return false
	}
}
