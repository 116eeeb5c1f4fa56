// Package tui provides the Bubble Tea terminal UI for fleet reconciliation.
package tui

import "github.com/proxfleet/proxfleet/internal/reconcile"

// NodeEventMsg carries a reconciler progress event into the model.
type NodeEventMsg struct {
	Event reconcile.Event
}

// TickMsg is sent periodically to advance the spinner.
type TickMsg struct{}

// DoneMsg signals that the run finished.
type DoneMsg struct {
	Result *reconcile.Result
	Err    error
}
