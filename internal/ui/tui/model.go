package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/proxfleet/proxfleet/internal/reconcile"
)

// NodeRow is the display state of one node operation.
type NodeRow struct {
	Name   string
	Op     string
	Active bool
	Done   bool
	Err    error
}

// Model is the Bubble Tea model for apply and destroy runs.
type Model struct {
	FleetName string
	Operation string

	rows  []NodeRow
	index map[string]int

	Result *reconcile.Result
	Err    error

	StartTime    time.Time
	SpinnerFrame int
	Width        int
	Done         bool
}

// NewRunModel creates a model tracking a mutating run.
func NewRunModel(fleetName, operation string) Model {
	return Model{
		FleetName: fleetName,
		Operation: operation,
		index:     map[string]int{},
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case NodeEventMsg:
		m.applyEvent(msg.Event)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		m.Result = msg.Result
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(e reconcile.Event) {
	i, seen := m.index[e.Node]
	if !seen {
		m.rows = append(m.rows, NodeRow{Name: e.Node})
		i = len(m.rows) - 1
		m.index[e.Node] = i
		sort.SliceStable(m.rows, func(a, b int) bool {
			return m.rows[a].Name < m.rows[b].Name
		})
		for j, row := range m.rows {
			m.index[row.Name] = j
		}
		i = m.index[e.Node]
	}

	row := &m.rows[i]
	row.Op = e.Op
	switch e.Phase {
	case reconcile.PhaseStart:
		row.Active = true
	case reconcile.PhaseDone:
		row.Active = false
		row.Done = true
	case reconcile.PhaseFailed:
		row.Active = false
		row.Err = e.Err
	}
}

// Rows returns the node rows in display order.
func (m Model) Rows() []NodeRow {
	return m.rows
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
