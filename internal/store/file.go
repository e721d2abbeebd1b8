package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

// File permissions and lock timing for FileStore.
const (
	dirPerm        = 0o700
	filePerm       = 0o600
	lockFileName   = ".store.lock"
	lockRetryDelay = 50 * time.Millisecond

	// LockTimeout is how long an operation waits for another process to
	// release the data directory.
	LockTimeout = 5 * time.Second
)

// FileStore keeps each collection in <dir>/<collection>.json. A directory
// lock serializes access across processes, and every write goes through a
// temp file and rename.
type FileStore struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory %w", astroerrors.ErrEmptyValue)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, collection string) ([]Record, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	var records []Record
	err := s.withLock(ctx, func() error {
		var readErr error
		records, readErr = s.read(collection)
		return readErr
	})
	return records, err
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, collection string, rec Record) error {
	if err := validateRecord(collection, rec); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		records, err := s.read(collection)
		if err != nil {
			return err
		}
		return s.write(collection, upsert(records, rec))
	})
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		records, err := s.read(collection)
		if err != nil {
			return err
		}
		return s.write(collection, remove(records, id))
	})
}

// Close implements Store.
func (s *FileStore) Close() error {
	return s.lock.Close()
}

// withLock runs fn while holding both the in-process mutex and the
// directory lock. It respects ctx and gives up after LockTimeout.
func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	locked, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to acquire store lock: %w", astroerrors.ErrLockTimeout)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	return fn()
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) read(collection string) ([]Record, error) {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", astroerrors.ErrStoreCorrupted, collection, err.Error())
	}
	return records, nil
}

func (s *FileStore) write(collection string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}
	return atomicWrite(s.path(collection), data)
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// data must be on disk before the rename makes it visible
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
