package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/proxfleet/proxfleet/internal/util/naming"
)

// FileStore persists the record as a JSON file next to the configuration.
// The advisory lock is a sibling file created with O_EXCL, so a second
// proxfleet on the same machine loses the race atomically.
type FileStore struct {
	statePath string
	lockPath  string
	fleet     string
}

// NewFileStore creates a store rooted at dir for the given fleet.
func NewFileStore(dir, fleetName string) *FileStore {
	return &FileStore{
		statePath: filepath.Join(dir, naming.StateFile(fleetName)),
		lockPath:  filepath.Join(dir, naming.LockFile(fleetName)),
		fleet:     fleetName,
	}
}

// Load reads the record, returning a fresh one when no file exists yet.
func (s *FileStore) Load(_ context.Context) (*Record, error) {
	raw, err := os.ReadFile(s.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewRecord(s.fleet), nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", s.statePath, err)
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.statePath, err)
	}
	if record.Version > CurrentVersion {
		return nil, fmt.Errorf("state file %s has version %d, this build supports up to %d",
			s.statePath, record.Version, CurrentVersion)
	}
	if record.Nodes == nil {
		record.Nodes = map[string]NodeRecord{}
	}
	return &record, nil
}

// Save writes the record via a temp file and rename, so a crash mid-write
// never leaves a truncated record behind.
func (s *FileStore) Save(_ context.Context, record *Record) error {
	record.Version = CurrentVersion
	record.Serial++
	record.UpdatedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, s.statePath); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Lock creates the lock file exclusively.
func (s *FileStore) Lock(_ context.Context, info LockInfo) error {
	info.AcquiredAt = time.Now().UTC()
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding lock info: %w", err)
	}

	f, err := os.OpenFile(s.lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrLocked, s.describeHolder())
		}
		return fmt.Errorf("creating lock file %s: %w", s.lockPath, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(raw); err != nil {
		return fmt.Errorf("writing lock file %s: %w", s.lockPath, err)
	}
	return nil
}

// Unlock removes the lock file.
func (s *FileStore) Unlock(_ context.Context) error {
	if err := os.Remove(s.lockPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("lock file %s already released", s.lockPath)
		}
		return fmt.Errorf("removing lock file %s: %w", s.lockPath, err)
	}
	return nil
}

func (s *FileStore) describeHolder() string {
	raw, err := os.ReadFile(s.lockPath)
	if err != nil {
		return "holder unknown"
	}
	var info LockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return "holder unknown"
	}
	return info.String()
}
