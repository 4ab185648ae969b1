package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the shared watched configuration. The watcher is its single
// writer, the ingestion loop its single reader. The change flag is a
// polling signal, not a rendezvous: the loop checks it once per record and
// only then takes the lock to clone the current value.
type Store struct {
	mu      sync.Mutex
	watched Watched
	changed atomic.Bool
}

// NewStore creates a store seeded with the startup configuration.
func NewStore(watched Watched) *Store {
	return &Store{watched: watched}
}

// Snapshot returns a copy of the current watched configuration. The lock is
// held only for the copy, never across I/O.
func (s *Store) Snapshot() Watched {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watched
}

// Replace swaps in a new watched configuration wholesale and raises the
// change flag.
func (s *Store) Replace(watched Watched) {
	s.mu.Lock()
	s.watched = watched
	s.mu.Unlock()
	s.changed.Store(true)
}

// Changed reports whether a new value is available since the last Ack.
func (s *Store) Changed() bool {
	return s.changed.Load()
}

// Ack clears the change flag after the reader has taken a snapshot.
func (s *Store) Ack() {
	s.changed.Store(false)
}
