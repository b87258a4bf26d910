// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vehicle

import "sync"

// Store holds the currently selected vehicle, or none.
//
// Chat queries read it at send time from a command goroutine while the UI
// loop may replace it, so access goes through a RWMutex.
type Store struct {
	mu      sync.RWMutex
	current Context
	set     bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current vehicle and whether one is set.
func (s *Store) Get() (Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.set
}

// Current returns a pointer to a copy of the current vehicle, or nil.
func (s *Store) Current() *Context {
	v, ok := s.Get()
	if !ok {
		return nil
	}
	return &v
}

// Set replaces the vehicle as a whole.
func (s *Store) Set(v Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
	s.set = true
}

// Clear removes the vehicle context.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Context{}
	s.set = false
}
