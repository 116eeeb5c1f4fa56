package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/proxfleet/proxfleet/internal/platform/s3"
	"github.com/proxfleet/proxfleet/internal/util/naming"
)

// S3Store persists the record in an S3-compatible bucket, so multiple
// operator machines share one state. The advisory lock is a conditional put
// of a lock object: whichever writer creates it first wins.
type S3Store struct {
	store  s3.ObjectStore
	bucket string
	fleet  string
}

// NewS3Store creates a store backed by the given bucket.
func NewS3Store(store s3.ObjectStore, bucket, fleetName string) *S3Store {
	return &S3Store{
		store:  store,
		bucket: bucket,
		fleet:  fleetName,
	}
}

// Load reads the record, returning a fresh one when no object exists yet.
func (s *S3Store) Load(ctx context.Context) (*Record, error) {
	raw, err := s.store.GetObject(ctx, s.bucket, naming.StateObject(s.fleet))
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return NewRecord(s.fleet), nil
		}
		return nil, fmt.Errorf("loading state: %w", err)
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("parsing state object: %w", err)
	}
	if record.Version > CurrentVersion {
		return nil, fmt.Errorf("state object has version %d, this build supports up to %d",
			record.Version, CurrentVersion)
	}
	if record.Nodes == nil {
		record.Nodes = map[string]NodeRecord{}
	}
	return &record, nil
}

// Save persists the record. Saves happen only under the advisory lock, so a
// plain overwrite is safe.
func (s *S3Store) Save(ctx context.Context, record *Record) error {
	record.Version = CurrentVersion
	record.Serial++
	record.UpdatedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := s.store.PutObject(ctx, s.bucket, naming.StateObject(s.fleet), raw); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Lock creates the lock object conditionally.
func (s *S3Store) Lock(ctx context.Context, info LockInfo) error {
	info.AcquiredAt = time.Now().UTC()
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding lock info: %w", err)
	}

	err = s.store.PutObjectIfAbsent(ctx, s.bucket, naming.LockObject(s.fleet), raw)
	if err != nil {
		if errors.Is(err, s3.ErrObjectExists) {
			return fmt.Errorf("%w: %s", ErrLocked, s.describeHolder(ctx))
		}
		return fmt.Errorf("acquiring lock: %w", err)
	}
	return nil
}

// Unlock removes the lock object.
func (s *S3Store) Unlock(ctx context.Context) error {
	key := naming.LockObject(s.fleet)
	if _, err := s.store.GetObject(ctx, s.bucket, key); err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return fmt.Errorf("lock object %s already released", key)
		}
		return fmt.Errorf("releasing lock: %w", err)
	}
	if err := s.store.DeleteObject(ctx, s.bucket, key); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

func (s *S3Store) describeHolder(ctx context.Context) string {
	raw, err := s.store.GetObject(ctx, s.bucket, naming.LockObject(s.fleet))
	if err != nil {
		return "holder unknown"
	}
	var info LockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return "holder unknown"
	}
	return info.String()
}
