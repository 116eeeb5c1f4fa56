package handlers

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/reconcile"
	"github.com/proxfleet/proxfleet/internal/ui/tui"
)

// runWithProgress executes a mutating run with per-node progress output:
// an interactive display on a terminal, line-oriented logs otherwise. The
// reporter passed to build must be wired into the reconciler so node
// events reach the display.
func runWithProgress(
	ctx context.Context,
	cfg *config.Config,
	operation string,
	plain bool,
	build func(reporter reconcile.Reporter) *reconcile.Reconciler,
	run func(rec *reconcile.Reconciler) (*reconcile.Result, error),
) (*reconcile.Result, error) {
	if plain || !isTerminal() {
		rec := build(func(e reconcile.Event) {
			log.Println(e.String())
		})
		return run(rec)
	}

	p := tea.NewProgram(tui.NewRunModel(cfg.Fleet, operation), tea.WithContext(ctx))
	rec := build(func(e reconcile.Event) {
		p.Send(tui.NodeEventMsg{Event: e})
	})

	go func() {
		result, err := run(rec)
		p.Send(tui.DoneMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress display failed: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok || !m.Done {
		return nil, fmt.Errorf("%s interrupted; the state lock may still be held", operation)
	}
	return m.Result, m.Err
}
