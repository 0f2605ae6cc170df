package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/hack-pad/hackpadfs"
)

// FileStore persists state as a single JSON document on a hackpadfs
// filesystem. In the WASM build the extension mounts an IndexedDB-backed FS;
// tests use an in-memory FS. The version check is process-local (guarded by
// the mutex), which matches the single-process extension host.
type FileStore struct {
	mu   sync.Mutex
	fs   hackpadfs.FS
	path string
}

// NewFileStore creates a store writing to path on the given filesystem.
func NewFileStore(fsys hackpadfs.FS, path string) *FileStore {
	return &FileStore{fs: fsys, path: path}
}

func (s *FileStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (*State, error) {
	content, err := hackpadfs.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to read state file: %w", err)
	}

	st := NewState()
	if err := json.Unmarshal(content, st); err != nil {
		return nil, fmt.Errorf("store: corrupt state file: %w", err)
	}
	normalize(st)
	return st, nil
}

func (s *FileStore) Save(next *State, expect int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	if current.Version != expect {
		return ErrVersionConflict
	}

	next.Version = expect + 1
	content, err := json.Marshal(next)
	if err != nil {
		next.Version = expect
		return fmt.Errorf("store: failed to marshal state: %w", err)
	}

	if err := hackpadfs.WriteFullFile(s.fs, s.path, content, 0644); err != nil {
		next.Version = expect
		return fmt.Errorf("store: failed to write state file: %w", err)
	}
	return nil
}

// Close is a no-op; the filesystem is owned by the caller.
func (s *FileStore) Close() error {
	return nil
}

// Compile-time interface check
var _ Storer = (*FileStore)(nil)
