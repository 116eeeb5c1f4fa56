package tui

import (
	"fmt"
	"strings"
	"time"
)

func renderView(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("proxfleet %s", m.Operation)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  fleet %s", m.FleetName)))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  waiting for plan...") + "\n")
	}
	for _, row := range m.rows {
		b.WriteString(renderRow(row, m.SpinnerFrame))
		b.WriteString("\n")
	}

	if m.Done {
		b.WriteString("\n")
		switch {
		case m.Err != nil:
			b.WriteString(failedStyle.Render(fmt.Sprintf("%s failed: %v", m.Operation, m.Err)))
		case m.Result != nil:
			b.WriteString(doneStyle.Render(fmt.Sprintf("%s complete: %s", m.Operation, m.Result)))
		default:
			b.WriteString(doneStyle.Render(m.Operation + " complete"))
		}
		b.WriteString("\n")
	} else {
		elapsed := time.Since(m.StartTime).Round(time.Second)
		b.WriteString(footerStyle.Render(fmt.Sprintf("elapsed %s · q to quit", elapsed)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderRow(row NodeRow, frame int) string {
	var mark, detail string
	switch {
	case row.Err != nil:
		mark = failedStyle.Render(crossMark)
		detail = failedStyle.Render(fmt.Sprintf("%s failed: %v", row.Op, row.Err))
	case row.Done:
		mark = doneStyle.Render(checkMark)
		detail = dimStyle.Render(row.Op + " complete")
	case row.Active:
		mark = spinnerFrames[frame%len(spinnerFrames)]
		detail = row.Op + "..."
	default:
		mark = dimStyle.Render(pendMark)
		detail = dimStyle.Render("pending")
	}
	return fmt.Sprintf("  %s %-14s %s", mark, row.Name, detail)
}
