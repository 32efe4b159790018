package crop

import "sync"

// Store holds the Region of every image in the active set, keyed by the
// image's 0-based display index.
//
// An index with no entry has not been laid out yet. Clear must be called
// whenever the active image set is replaced so that no region outlives the
// image it was measured for.
type Store struct {
	mu      sync.RWMutex
	regions map[int]*Region
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		regions: make(map[int]*Region),
	}
}

// Ensure creates the region for index with handles at topY and bottomY
// unless one already exists. The first layout wins: repeated layout
// callbacks return the existing region untouched.
//
// The boolean result reports whether a new region was created.
func (s *Store) Ensure(index int, topY, bottomY float64) (*Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.regions[index]; ok {
		return r, false
	}
	r := NewRegion(topY, bottomY)
	s.regions[index] = r
	return r, true
}

// Get returns the region for index, if it has been measured.
func (s *Store) Get(index int) (*Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[index]
	return r, ok
}

// Len returns the number of measured regions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Clear drops every region.
func (s *Store) Clear() {
	s.mu.Lock()
	s.regions = make(map[int]*Region)
	s.mu.Unlock()
}
