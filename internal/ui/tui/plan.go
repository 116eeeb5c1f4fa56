package tui

import (
	"fmt"
	"strings"

	"github.com/proxfleet/proxfleet/internal/fleet"
)

// RenderPlan renders a plan for the terminal, terraform-style: one line per
// pending change, conflicts called out before everything else.
func RenderPlan(plan *fleet.Plan) string {
	var b strings.Builder

	if len(plan.Conflicts) > 0 {
		b.WriteString(conflictStyle.Render("Conflicts (not resolved automatically):"))
		b.WriteString("\n")
		for _, c := range plan.Conflicts {
			b.WriteString(conflictStyle.Render(fmt.Sprintf("  ! %s", c.Name)))
			b.WriteString(fmt.Sprintf("  vmid %d: %s\n", c.VMID, c.Reason))
		}
		b.WriteString("\n")
	}

	if plan.Empty() {
		b.WriteString("No changes. Fleet matches the configuration.\n")
		return b.String()
	}

	b.WriteString(sectionStyle.Render("Plan: " + plan.Summary()))
	b.WriteString("\n\n")

	for _, node := range plan.Creates {
		b.WriteString(createStyle.Render(fmt.Sprintf("  + %s", node.Name)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  vmid %d, %s, %d cores, %dM, %dG", node.VMID, node.CIDR(), node.Cores, node.MemoryMB, node.DiskGB)))
		b.WriteString("\n")
	}
	for _, update := range plan.Updates {
		b.WriteString(updateStyle.Render(fmt.Sprintf("  ~ %s", update.Node.Name)))
		b.WriteString(dimStyle.Render("  " + fleet.DescribeUpdate(update)))
		b.WriteString("\n")
	}
	for _, vm := range plan.Deletes {
		b.WriteString(deleteStyle.Render(fmt.Sprintf("  - %s", vm.Name)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  vmid %d", vm.VMID)))
		b.WriteString("\n")
	}

	return b.String()
}
