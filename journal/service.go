// Package journal manages user-private journal entries and their
// ingestion into the vector index.
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/models"
)

// Ingester indexes a document for similarity search.
type Ingester interface {
	Ingest(ctx context.Context, title, content, url string, metadata map[string]interface{}) (string, int, error)
}

// Service stores journal entries and mirrors them into the vector index.
// Ingestion failure never fails the write; the entry is kept with
// Ingested left false.
type Service struct {
	store    Store
	ingester Ingester
	logger   *zap.Logger
}

func NewService(store Store, ingester Ingester, logger *zap.Logger) *Service {
	return &Service{store: store, ingester: ingester, logger: logger}
}

// Create persists a new entry and ingests it into the vector index so
// future chat turns can retrieve it under the user's document quota.
func (s *Service) Create(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if strings.TrimSpace(entry.Content) == "" {
		return models.JournalEntry{}, models.ErrEmptyText
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt

	if err := s.store.Put(ctx, entry); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to store journal entry: %w", err)
	}

	documentID, err := s.ingest(ctx, entry)
	if err != nil {
		s.logger.Error("failed to ingest journal entry, stored unindexed",
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		return entry, nil
	}

	entry.DocumentID = documentID
	entry.Ingested = true
	if err := s.store.Put(ctx, entry); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return entry, nil
}

// Update rewrites the mutable fields and re-ingests when the title or
// content changed.
func (s *Service) Update(ctx context.Context, userID, entryID string, updated models.JournalEntry) (models.JournalEntry, bool, error) {
	entry, ok, err := s.store.Get(ctx, userID, entryID)
	if err != nil || !ok {
		return models.JournalEntry{}, false, err
	}

	reingest := (updated.Title != "" && updated.Title != entry.Title) ||
		(updated.Content != "" && updated.Content != entry.Content)

	if updated.Title != "" {
		entry.Title = updated.Title
	}
	if updated.Content != "" {
		entry.Content = updated.Content
	}
	if updated.Mood != "" {
		entry.Mood = updated.Mood
	}
	if updated.Tags != nil {
		entry.Tags = updated.Tags
	}
	entry.UpdatedAt = time.Now().UTC()

	if reingest {
		documentID, err := s.ingest(ctx, entry)
		if err != nil {
			s.logger.Error("failed to re-ingest journal entry",
				zap.String("entry_id", entry.ID),
				zap.Error(err))
		} else {
			entry.DocumentID = documentID
			entry.Ingested = true
		}
	}

	if err := s.store.Put(ctx, entry); err != nil {
		return models.JournalEntry{}, false, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return entry, true, nil
}

func (s *Service) Get(ctx context.Context, userID, entryID string) (models.JournalEntry, bool, error) {
	return s.store.Get(ctx, userID, entryID)
}

// List returns the user's entries newest first, optionally filtered by
// tag and mood.
func (s *Service) List(ctx context.Context, userID, tag, mood string) ([]models.JournalEntry, error) {
	entries, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := entries[:0]
	for _, e := range entries {
		if mood != "" && e.Mood != mood {
			continue
		}
		if tag != "" && !containsTag(e.Tags, tag) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

// Delete removes the stored entry. The indexed vectors are left in place
// and age out with the index.
func (s *Service) Delete(ctx context.Context, userID, entryID string) (bool, error) {
	return s.store.Delete(ctx, userID, entryID)
}

func (s *Service) ingest(ctx context.Context, entry models.JournalEntry) (string, error) {
	if s.ingester == nil {
		return "", fmt.Errorf("vector index is not configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Journal Entry - %s\n\nDate: %s\n\n%s",
		entry.Title, entry.CreatedAt.Format("2006-01-02"), entry.Content)
	if entry.Mood != "" {
		fmt.Fprintf(&b, "\n\nMood: %s", entry.Mood)
	}
	if len(entry.Tags) > 0 {
		fmt.Fprintf(&b, "\n\nTags: %s", strings.Join(entry.Tags, ", "))
	}

	mood := entry.Mood
	if mood == "" {
		mood = "unknown"
	}
	metadata := map[string]interface{}{
		"type":       "journal_entry",
		"user_id":    entry.UserID,
		"entry_id":   entry.ID,
		"created_at": entry.CreatedAt.Format(time.RFC3339),
		"mood":       mood,
	}

	documentID, _, err := s.ingester.Ingest(ctx, "Journal: "+entry.Title, b.String(), "", metadata)
	return documentID, err
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
