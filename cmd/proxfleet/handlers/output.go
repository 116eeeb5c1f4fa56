package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputOptions are the flags accepted by the output command.
type OutputOptions struct {
	ConfigPath string
	Format     string
}

type nodeOutput struct {
	Name    string `json:"name" yaml:"name"`
	VMID    int    `json:"vmid" yaml:"vmid"`
	Address string `json:"address" yaml:"address"`
	State   string `json:"state" yaml:"state"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

type fleetOutput struct {
	Fleet     string       `json:"fleet" yaml:"fleet"`
	Serial    int          `json:"serial" yaml:"serial"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"updated_at"`
	Nodes     []nodeOutput `json:"nodes" yaml:"nodes"`
}

// Output prints the recorded fleet state. It reads the state store only
// and never contacts the Proxmox API, so the token secret is not needed
// and cannot appear in any format.
func Output(ctx context.Context, opts OutputOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	store, err := newStateStore(cfg)
	if err != nil {
		return err
	}

	record, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading state failed: %w", err)
	}

	out := fleetOutput{
		Fleet:     record.Fleet,
		Serial:    record.Serial,
		UpdatedAt: record.UpdatedAt,
	}
	for name, rec := range record.Nodes {
		out.Nodes = append(out.Nodes, nodeOutput{
			Name:    name,
			VMID:    rec.VMID,
			Address: rec.Address,
			State:   string(rec.State),
			Message: rec.Message,
		})
	}
	sort.Slice(out.Nodes, func(i, j int) bool {
		return out.Nodes[i].Name < out.Nodes[j].Name
	})

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(out)
	case "table", "":
		return renderTable(out)
	default:
		return fmt.Errorf("unknown format %q: expected table, json or yaml", opts.Format)
	}
}

func renderTable(out fleetOutput) error {
	if len(out.Nodes) == 0 {
		fmt.Printf("Fleet %q has no recorded nodes. Run apply first.\n", out.Fleet)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVMID\tADDRESS\tSTATE\tMESSAGE")
	for _, n := range out.Nodes {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", n.Name, n.VMID, n.Address, n.State, n.Message)
	}
	return w.Flush()
}
