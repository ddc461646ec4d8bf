package config

import "sync/atomic"

// Store hands out immutable configuration snapshots. The monitor loop
// reads one snapshot per cycle; updates swap in a whole new Config
// atomically, so a reader never observes a partially-written value.
type Store struct {
	p atomic.Pointer[Config]
}

// NewStore creates a store holding cfg.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.p.Store(cfg)
	return s
}

// Get returns the current snapshot. Callers must not mutate it.
func (s *Store) Get() *Config {
	return s.p.Load()
}

// Update swaps in a new snapshot. The caller passes ownership of cfg
// and must not touch it afterwards.
func (s *Store) Update(cfg *Config) {
	s.p.Store(cfg)
}
