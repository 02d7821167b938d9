// Package battery keeps the robot's battery level and answers level queries
// arriving on the message bus.
package battery

import "sync"

// Store holds an optional battery level. An absent level reads as 0.
type Store struct {
	mu    sync.RWMutex
	level *float64
}

func NewStore(initial *float64) *Store {
	s := &Store{}
	if initial != nil {
		v := *initial
		s.level = &v
	}
	return s
}

func (s *Store) Level() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.level == nil {
		return 0
	}
	return *s.level
}

// Known reports whether a level was configured or set.
func (s *Store) Known() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level != nil
}

func (s *Store) SetLevel(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = &v
}
