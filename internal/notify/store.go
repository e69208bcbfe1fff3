package notify

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// DefaultMaxEntries caps the persisted notified-set. Oldest entries are
// evicted first; an evicted entry may notify again, which is harmless.
const DefaultMaxEntries = 512

// Key identifies one already-notified event. Kind and ID together are
// the identity; ids from different kinds never collide.
type Key struct {
	Kind string `json:"kind"`
	ID   uint64 `json:"id"`
}

// Store is an insertion-ordered, size-capped set of notified keys with
// JSON file persistence.
type Store struct {
	mu    sync.Mutex
	path  string
	max   int
	keys  []Key
	index map[Key]struct{}
}

func NewStore(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		path:  path,
		max:   maxEntries,
		index: make(map[Key]struct{}),
	}
}

// Load reads the persisted set. A missing file is a fresh start, not an
// error. A corrupt file is discarded with an empty set.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var keys []Key
	if err = json.Unmarshal(data, &keys); err != nil {
		s.keys = nil
		s.index = make(map[Key]struct{})
		return nil
	}

	s.keys = nil
	s.index = make(map[Key]struct{})
	for _, k := range keys {
		s.addLocked(k)
	}
	return nil
}

// Contains reports whether the key was already notified.
func (s *Store) Contains(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[k]
	return ok
}

// Add records keys as notified and persists the set. Adding an already
// present key is a no-op.
func (s *Store) Add(keys ...Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := s.index[k]; ok {
			continue
		}
		s.addLocked(k)
		changed = true
	}
	if !changed {
		return nil
	}
	return s.saveLocked()
}

// Len returns the current number of remembered keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func (s *Store) addLocked(k Key) {
	s.keys = append(s.keys, k)
	s.index[k] = struct{}{}
	for len(s.keys) > s.max {
		evicted := s.keys[0]
		s.keys = s.keys[1:]
		delete(s.index, evicted)
	}
}

// saveLocked writes via a temp file and rename so a crash mid-write
// never leaves a truncated state file.
func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.keys)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".notified-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
