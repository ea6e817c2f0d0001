package journal

import (
	"context"
	"sort"
	"sync"

	"github.com/mentalbloom/mentalbloom/models"
)

// Store persists journal entries keyed by user and entry id. The service
// is written against this interface so a database-backed implementation
// can replace the in-memory one without touching the service.
type Store interface {
	Put(ctx context.Context, entry models.JournalEntry) error
	Get(ctx context.Context, userID, entryID string) (models.JournalEntry, bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.JournalEntry, error)
	Delete(ctx context.Context, userID, entryID string) (bool, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]models.JournalEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]models.JournalEntry)}
}

func (s *MemoryStore) Put(_ context.Context, entry models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.entries[entry.UserID]
	if !ok {
		byID = make(map[string]models.JournalEntry)
		s.entries[entry.UserID] = byID
	}
	byID[entry.ID] = entry
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID, entryID string) (models.JournalEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID][entryID]
	return entry, ok, nil
}

// ListByUser returns the user's entries, newest first.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := s.entries[userID]
	entries := make([]models.JournalEntry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, entryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.entries[userID]
	if !ok {
		return false, nil
	}
	if _, ok := byID[entryID]; !ok {
		return false, nil
	}
	delete(byID, entryID)
	return true, nil
}
