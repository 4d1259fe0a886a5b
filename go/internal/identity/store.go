// Package identity persists which event and user this client joined as, so a
// restart rejoins the same draft without asking again.
package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Local is the persisted choice. Zero ids mean "not chosen".
type Local struct {
	EventID int `yaml:"event_id,omitempty"`
	UserID  int `yaml:"user_id,omitempty"`
}

// HasUser reports whether a participant has been chosen
func (l Local) HasUser() bool {
	return l.UserID > 0
}

// FileStore keeps Local in a YAML file. A missing file reads as empty.
type FileStore struct {
	path string

	mu    sync.Mutex
	local Local
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file into memory and returns its contents
func (s *FileStore) Load() (Local, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.local = Local{}
		return s.local, nil
	}
	if err != nil {
		return Local{}, fmt.Errorf("failed to read identity file: %w", err)
	}

	var local Local
	if err := yaml.Unmarshal(data, &local); err != nil {
		return Local{}, fmt.Errorf("failed to parse identity file %s: %w", s.path, err)
	}
	s.local = local
	return local, nil
}

// Get returns the in-memory value without touching the file
func (s *FileStore) Get() Local {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// Save replaces the stored value
func (s *FileStore) Save(local Local) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(local)
}

func (s *FileStore) SetEventID(eventID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.local
	next.EventID = eventID
	return s.writeLocked(next)
}

func (s *FileStore) SetUserID(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.local
	next.UserID = userID
	return s.writeLocked(next)
}

// Clear forgets both ids and removes the file
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = Local{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	return nil
}

// writeLocked writes through a temp file so a crash never leaves a torn file
func (s *FileStore) writeLocked(local Local) error {
	data, err := yaml.Marshal(local)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".identity-*")
	if err != nil {
		return fmt.Errorf("failed to create identity file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace identity file: %w", err)
	}

	s.local = local
	return nil
}
