// Package creds holds NTRIP username/password pairs for services that
// require authentication. The store is bounded; sixteen entries is plenty
// for a rover that talks to a handful of casters.
package creds

import (
	"errors"
	"sync"
)

// MaxEntries bounds the store.
const MaxEntries = 16

var (
	ErrStoreFull = errors.New("creds: credential store full")
	ErrNotFound  = errors.New("creds: no credentials for service")
)

// Credentials is one username/password pair.
type Credentials struct {
	Username string
	Password string
}

// RTK2goDefaults is the community convention for rtk2go.com casters: any
// valid email address as the username, password ignored.
var RTK2goDefaults = Credentials{Username: "user@example.com", Password: "none"}

// Store maps service IDs to credentials. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Credentials
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Credentials, MaxEntries)}
}

// Set stores or replaces credentials for a service. Returns ErrStoreFull
// when adding a new entry would exceed the capacity.
func (s *Store) Set(serviceID string, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[serviceID]; !ok && len(s.entries) >= MaxEntries {
		return ErrStoreFull
	}
	s.entries[serviceID] = c
	return nil
}

// Get returns the credentials for a service.
func (s *Store) Get(serviceID string) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entries[serviceID]
	if !ok {
		return Credentials{}, ErrNotFound
	}
	return c, nil
}

// Has reports whether credentials exist for a service.
func (s *Store) Has(serviceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[serviceID]
	return ok
}

// Delete removes credentials for a service, if present.
func (s *Store) Delete(serviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, serviceID)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
