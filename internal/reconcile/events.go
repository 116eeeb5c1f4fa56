package reconcile

import "fmt"

// Phase marks where in an operation an event was emitted.
type Phase string

const (
	PhaseStart  Phase = "start"
	PhaseDone   Phase = "done"
	PhaseFailed Phase = "failed"
)

// Event reports progress of a single node operation. The TUI and the plain
// logger both render these.
type Event struct {
	Node  string
	Op    string
	Phase Phase
	Err   error
}

func (e Event) String() string {
	switch e.Phase {
	case PhaseStart:
		return fmt.Sprintf("%s: %s...", e.Node, e.Op)
	case PhaseFailed:
		return fmt.Sprintf("%s: %s failed: %v", e.Node, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s complete", e.Node, e.Op)
	}
}

// Reporter receives progress events. It must be safe for concurrent use;
// node operations run in parallel.
type Reporter func(Event)
