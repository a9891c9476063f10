package appointment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store persists appointments as a single JSON array document.
//
// The mutex only serializes access within one process; two processes
// writing the same file can still lose appends.
type Store struct {
	mu   sync.RWMutex
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Add validates the appointment, stamps its creation time, and appends it
// to the document.
func (s *Store) Add(appt Appointment) error {
	if err := appt.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	appt.CreatedAt = time.Now().UTC()
	items = append(items, appt)

	return s.save(items)
}

// List returns all appointments in insertion order.
// A missing file reads as an empty list.
func (s *Store) List() ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

// load reads the full document. Callers hold the lock.
func (s *Store) load() ([]Appointment, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Appointment{}, nil
		}
		return nil, fmt.Errorf("failed to read appointment file: %w", err)
	}

	var items []Appointment
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse appointment file: %w", err)
	}
	if items == nil {
		items = []Appointment{}
	}

	return items, nil
}

// save writes the document atomically via a temp file and rename.
// Callers hold the lock.
func (s *Store) save(items []Appointment) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode appointments: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write appointment file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace appointment file: %w", err)
	}

	return nil
}
