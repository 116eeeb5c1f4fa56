package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/fleet"
	"github.com/proxfleet/proxfleet/internal/reconcile"
)

func updated(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestModel_TracksNodeLifecycle(t *testing.T) {
	m := NewRunModel("homelab", "apply")

	m = updated(t, m, NodeEventMsg{Event: reconcile.Event{Node: "homelab-01", Op: "create", Phase: reconcile.PhaseStart}})
	require.Len(t, m.Rows(), 1)
	assert.True(t, m.Rows()[0].Active)

	m = updated(t, m, NodeEventMsg{Event: reconcile.Event{Node: "homelab-01", Op: "create", Phase: reconcile.PhaseDone}})
	assert.True(t, m.Rows()[0].Done)
	assert.False(t, m.Rows()[0].Active)
}

func TestModel_RowsStaySortedByName(t *testing.T) {
	m := NewRunModel("homelab", "apply")

	for _, name := range []string{"homelab-03", "homelab-01", "homelab-02"} {
		m = updated(t, m, NodeEventMsg{Event: reconcile.Event{Node: name, Op: "create", Phase: reconcile.PhaseStart}})
	}

	rows := m.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "homelab-01", rows[0].Name)
	assert.Equal(t, "homelab-03", rows[2].Name)
}

func TestModel_FailureShowsInView(t *testing.T) {
	m := NewRunModel("homelab", "apply")
	m = updated(t, m, NodeEventMsg{Event: reconcile.Event{
		Node: "homelab-02", Op: "create", Phase: reconcile.PhaseFailed, Err: errors.New("storage full"),
	}})

	view := m.View()
	assert.Contains(t, view, "homelab-02")
	assert.Contains(t, view, "storage full")
}

func TestModel_DoneQuitsWithSummary(t *testing.T) {
	m := NewRunModel("homelab", "apply")
	next, cmd := m.Update(DoneMsg{Result: &reconcile.Result{Created: 3}})
	m = next.(Model)

	assert.True(t, m.Done)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "3 created")
}

func TestModel_QuitKey(t *testing.T) {
	m := NewRunModel("homelab", "apply")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}

func TestRenderPlan_ListsChanges(t *testing.T) {
	plan := &fleet.Plan{
		Creates: []fleet.Node{{Name: "homelab-03", VMID: 203, Address: "192.168.1.23", MaskBits: 24, Cores: 2, MemoryMB: 4096, DiskGB: 20}},
		Updates: []fleet.Update{{Node: fleet.Node{Name: "homelab-01"}, Fields: []string{"cores 2 -> 4"}}},
		Deletes: []fleet.ObservedVM{{Name: "homelab-05", VMID: 205}},
	}

	out := RenderPlan(plan)
	assert.Contains(t, out, "1 to add, 1 to change, 1 to destroy")
	assert.Contains(t, out, "+ homelab-03")
	assert.Contains(t, out, "~ homelab-01")
	assert.Contains(t, out, "- homelab-05")
	assert.Contains(t, out, "cores 2 -> 4")
}

func TestRenderPlan_EmptyPlan(t *testing.T) {
	out := RenderPlan(&fleet.Plan{})
	assert.Contains(t, out, "No changes")
}

func TestRenderPlan_ConflictsComeFirst(t *testing.T) {
	plan := &fleet.Plan{
		Conflicts: []fleet.Conflict{{Name: "homelab-02", VMID: 202, Reason: "recorded as active but not observed; deleted out-of-band?"}},
	}

	out := RenderPlan(plan)
	assert.Contains(t, out, "! homelab-02")
	assert.Contains(t, out, "out-of-band")
}
