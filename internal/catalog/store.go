// Package catalog is the flat-file metadata store for uploaded logos.
//
// The whole collection lives in a single JSON file. Every operation loads
// the file, works on the in-memory slice and, for mutations, writes the
// complete collection back. A single mutex serializes the load-mutate-save
// cycle so concurrent requests cannot drop each other's changes.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Record describes one stored logo.
type Record struct {
	ID           int    `json:"id"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	PublicID     string `json:"public_id,omitempty"`
}

// Store persists Records in a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store backed by the JSON file at path. The file is not
// required to exist yet.
func Open(path string) *Store {
	return &Store{path: path}
}

// List returns all records sorted ascending by ID.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(), nil
}

// Get returns the record with the given ID. The second return value
// reports whether it exists.
func (s *Store) Get(id int) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.load() {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Insert assigns the next free ID to rec, appends it and persists the
// collection. It returns the stored record.
func (s *Store) Insert(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	rec.ID = nextID(records)
	records = append(records, rec)

	if err := s.save(records); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Remove deletes the record with the given ID and persists the collection.
// It reports whether a record was removed.
func (s *Store) Remove(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	kept := slices.DeleteFunc(records, func(r Record) bool { return r.ID == id })
	if len(kept) == len(records) {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// load reads the backing file. A missing or unparseable file yields an
// empty collection so startup and reads never block on bad state; the
// corrupt case is logged because it means previously saved data is lost.
func (s *Store) load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Unable to read logo catalog, treating as empty", "path", s.path, "err", err)
		}
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Logo catalog is corrupt, treating as empty", "path", s.path, "err", err)
		return nil
	}

	slices.SortFunc(records, func(a, b Record) int { return a.ID - b.ID })
	return records
}

// save writes the full collection through a temp file and rename so a
// crash mid-write never leaves a truncated catalog behind.
func (s *Store) save(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode logo catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".logos-*.json")
	if err != nil {
		return fmt.Errorf("create catalog temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close catalog temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}

// nextID is max(id)+1 over the collection, starting at 1 when empty.
func nextID(records []Record) int {
	next := 1
	for _, rec := range records {
		if rec.ID >= next {
			next = rec.ID + 1
		}
	}
	return next
}
