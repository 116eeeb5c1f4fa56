package fleet

import (
	"fmt"
	"sort"
	"strings"
)

// Update describes an in-place change to an existing node.
type Update struct {
	Node    Node
	Current ObservedVM
	Fields  []string
}

// Conflict is a divergence between recorded and observed state that must
// not be resolved silently, e.g. a node deleted out-of-band.
type Conflict struct {
	Name   string
	VMID   int
	Reason string
}

// RecordedNode is the last-known-realized view of a node, as persisted by
// the state store.
type RecordedNode struct {
	VMID  int
	State NodeState
}

// Plan is the three-way diff between desired, observed, and recorded state.
type Plan struct {
	Creates   []Node
	Updates   []Update
	Deletes   []ObservedVM
	Conflicts []Conflict
	Noops     []Node
}

// Empty reports whether the plan performs no provider operations.
func (p *Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Summary renders the one-line plan count, terraform-style.
func (p *Plan) Summary() string {
	return fmt.Sprintf("%d to add, %d to change, %d to destroy", len(p.Creates), len(p.Updates), len(p.Deletes))
}

// Diff computes a plan. It is pure: desired comes from the configuration,
// observed is a one-shot snapshot of managed VMs, and recorded is the state
// store's last-known view (keyed by node name, may be empty on first run).
//
// A node that is recorded as realized but missing from observation is a
// conflict, never a silent re-create.
func Diff(desired []Node, observed []ObservedVM, recorded map[string]RecordedNode) *Plan {
	plan := &Plan{}

	observedByName := make(map[string]ObservedVM, len(observed))
	for _, vm := range observed {
		observedByName[vm.Name] = vm
	}

	desiredNames := make(map[string]struct{}, len(desired))
	for _, node := range desired {
		desiredNames[node.Name] = struct{}{}

		current, exists := observedByName[node.Name]
		if !exists {
			if rec, wasRealized := recorded[node.Name]; wasRealized && rec.State == StateActive {
				plan.Conflicts = append(plan.Conflicts, Conflict{
					Name:   node.Name,
					VMID:   rec.VMID,
					Reason: "recorded as active but not observed; deleted out-of-band?",
				})
				continue
			}
			plan.Creates = append(plan.Creates, node)
			continue
		}

		if current.DiskGB > 0 && node.DiskGB < current.DiskGB {
			plan.Conflicts = append(plan.Conflicts, Conflict{
				Name:   node.Name,
				VMID:   current.VMID,
				Reason: fmt.Sprintf("disk shrink %dG -> %dG requires destroy and re-create", current.DiskGB, node.DiskGB),
			})
			continue
		}

		fields := changedFields(node, current)
		if len(fields) == 0 {
			plan.Noops = append(plan.Noops, node)
			continue
		}
		plan.Updates = append(plan.Updates, Update{Node: node, Current: current, Fields: fields})
	}

	for _, vm := range observed {
		if _, wanted := desiredNames[vm.Name]; !wanted {
			plan.Deletes = append(plan.Deletes, vm)
		}
	}
	// Highest index first so teardown unwinds in reverse creation order.
	sort.Slice(plan.Deletes, func(i, j int) bool {
		return plan.Deletes[i].Name > plan.Deletes[j].Name
	})

	return plan
}

func changedFields(node Node, current ObservedVM) []string {
	var fields []string
	if current.Cores != 0 && node.Cores != current.Cores {
		fields = append(fields, fmt.Sprintf("cores %d -> %d", current.Cores, node.Cores))
	}
	if current.MemoryMB != 0 && node.MemoryMB != current.MemoryMB {
		fields = append(fields, fmt.Sprintf("memory %dM -> %dM", current.MemoryMB, node.MemoryMB))
	}
	if current.DiskGB != 0 && node.DiskGB > current.DiskGB {
		fields = append(fields, fmt.Sprintf("disk %dG -> %dG", current.DiskGB, node.DiskGB))
	}
	if !current.Running {
		fields = append(fields, "power off -> on")
	}
	return fields
}

// DescribeUpdate renders an update's field list for plan output.
func DescribeUpdate(u Update) string {
	return strings.Join(u.Fields, ", ")
}
