// Package state persists the fleet's realized-node records and the advisory
// lock that serializes mutating runs.
//
// The record is the third input to planning, next to desired configuration
// and live observation: it is how a node that was realized but has since
// vanished is told apart from a node that was never created.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/proxfleet/proxfleet/internal/fleet"
)

// CurrentVersion is the record schema version written by this build.
const CurrentVersion = 1

// ErrLocked reports that another holder owns the fleet lock.
var ErrLocked = errors.New("fleet is locked")

// NodeRecord is the durable record of one fleet node.
type NodeRecord struct {
	Index     int             `json:"index"`
	VMID      int             `json:"vmid"`
	Address   string          `json:"address"`
	State     fleet.NodeState `json:"state"`
	Message   string          `json:"message,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Record is the durable record of a fleet. Serial increments on every save
// so stale copies are detectable in debugging sessions.
type Record struct {
	Version   int                   `json:"version"`
	Fleet     string                `json:"fleet"`
	Serial    int                   `json:"serial"`
	UpdatedAt time.Time             `json:"updated_at"`
	Nodes     map[string]NodeRecord `json:"nodes"`
}

// NewRecord returns an empty record for the given fleet.
func NewRecord(fleetName string) *Record {
	return &Record{
		Version: CurrentVersion,
		Fleet:   fleetName,
		Nodes:   map[string]NodeRecord{},
	}
}

// SetNode upserts the record for a node.
func (r *Record) SetNode(name string, rec NodeRecord) {
	rec.UpdatedAt = time.Now().UTC()
	r.Nodes[name] = rec
}

// SetState updates only the lifecycle state (and failure message) of an
// existing node record, creating it if needed.
func (r *Record) SetState(name string, st fleet.NodeState, message string) {
	rec := r.Nodes[name]
	rec.State = st
	rec.Message = message
	rec.UpdatedAt = time.Now().UTC()
	r.Nodes[name] = rec
}

// RemoveNode drops a node from the record after its deletion completed.
func (r *Record) RemoveNode(name string) {
	delete(r.Nodes, name)
}

// Recorded projects the record into the shape planning consumes.
func (r *Record) Recorded() map[string]fleet.RecordedNode {
	out := make(map[string]fleet.RecordedNode, len(r.Nodes))
	for name, rec := range r.Nodes {
		out[name] = fleet.RecordedNode{VMID: rec.VMID, State: rec.State}
	}
	return out
}

// LockInfo identifies the holder of the advisory lock.
type LockInfo struct {
	Holder     string    `json:"holder"`
	Operation  string    `json:"operation"`
	AcquiredAt time.Time `json:"acquired_at"`
}

func (l LockInfo) String() string {
	return fmt.Sprintf("held by %s (%s) since %s", l.Holder, l.Operation, l.AcquiredAt.Format(time.RFC3339))
}

// Store is a durable record store with an advisory lock.
type Store interface {
	// Load returns the fleet record. A store with no record yet returns a
	// fresh empty one, not an error.
	Load(ctx context.Context) (*Record, error)

	// Save persists the record, bumping its serial.
	Save(ctx context.Context, record *Record) error

	// Lock acquires the fleet advisory lock. When another holder owns it,
	// the error wraps ErrLocked and names the holder.
	Lock(ctx context.Context, info LockInfo) error

	// Unlock releases the lock. Releasing an unheld lock is an error, it
	// means two processes raced past the advisory protocol.
	Unlock(ctx context.Context) error
}
