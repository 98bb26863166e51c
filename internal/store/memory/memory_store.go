// Package memory keeps session results in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"parseview/internal/domain"
	"parseview/internal/port"
)

type entry struct {
	result    *domain.SessionResult
	expiresAt time.Time
}

// Store is a mutex-guarded map of session results. Entries older than the TTL
// are dropped lazily; a zero TTL keeps them until replaced or deleted.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

var _ port.ResultStore = (*Store)(nil)

// New creates an empty in-memory result store.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *Store) Put(_ context.Context, result *domain.SessionResult) error {
	if err := domain.ValidateSessionID(result.SessionID); err != nil {
		return err
	}
	now := s.now()
	e := entry{result: result}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.entries[result.SessionID] = e
	return nil
}

func (s *Store) Get(_ context.Context, sessionID string) (*domain.SessionResult, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		if cur, ok := s.entries[sessionID]; ok && cur.expired(s.now()) {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		return nil, domain.ErrResultNotFound
	}
	return e.result, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, id)
		}
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
