package launchargs

import (
	"fmt"
	"sync"
)

// Store holds the mutable overlay applied on top of the baseline launch
// arguments. Entries persist across launches until Reset. A key mapped to
// Delete stays in the overlay and removes the key when resolving.
//
// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	overlay Args
}

// NewStore returns an empty overlay store.
func NewStore() *Store {
	return &Store{overlay: Args{}}
}

// Get returns a deep copy of the current overlay, deletion markers included.
func (s *Store) Get() Args {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.overlay == nil {
		return Args{}
	}
	return s.overlay.Clone()
}

// Modify merges patch into the overlay shallowly: each key in patch is set to
// its value (or recorded as a deletion when the value is Delete); keys absent
// from patch are untouched. patch must be a string keyed map. The whole patch
// is validated before anything changes.
func (s *Store) Modify(patch any) error {
	entries, ok := asStringMap(patch)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrInvalidPatch, patch)
	}
	normalized, err := NormalizeArgs(entries, true)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == nil {
		s.overlay = Args{}
	}
	for key, value := range normalized {
		s.overlay[key] = value
	}
	return nil
}

// Reset clears the overlay. Calling it on an empty store is a no-op.
func (s *Store) Reset() {
	s.mu.Lock()
	s.overlay = Args{}
	s.mu.Unlock()
}

// Len returns the number of overlay entries, deletions included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overlay)
}
