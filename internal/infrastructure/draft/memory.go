// Package draft keeps pending proof uploads between requests.
package draft

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

type memoryEntry struct {
	pending   entity.PendingFile
	expiresAt time.Time
}

// MemoryStore is an in-process DraftStore. Expired entries are dropped
// lazily on access and by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load returns the pending file of id, or nil when absent or expired
func (s *MemoryStore) Load(ctx context.Context, id string) (*entity.PendingFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return nil, nil
	}
	pending := entry.pending
	return &pending, nil
}

// Save stores a copy of pending; a non-positive ttl never expires
func (s *MemoryStore) Save(ctx context.Context, id string, pending *entity.PendingFile, ttl time.Duration) error {
	if pending == nil {
		return s.Delete(ctx, id)
	}

	entry := memoryEntry{pending: *pending}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes the pending file of id
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ port.DraftStore = (*MemoryStore)(nil)
