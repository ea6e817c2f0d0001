package models

import "time"

// RetrievedDocument is a similarity-search hit above the relevance
// threshold. Results are request-scoped and never stored.
type RetrievedDocument struct {
	Title          string                 `json:"title"`
	URL            string                 `json:"url,omitempty"`
	Content        string                 `json:"content"`
	ContentSnippet string                 `json:"content_snippet"`
	RelevanceScore float64                `json:"relevance_score"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// DocumentChunk is one bounded, overlapping segment of an ingested
// document. Chunks inherit the parent metadata plus their own ordinal.
type DocumentChunk struct {
	DocumentID string                 `json:"document_id"`
	ChunkIndex int                    `json:"chunk_index"`
	Text       string                 `json:"text"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// JournalEntry is a user-private document. Entries are stored behind
// journal.Store and additionally ingested into the vector index so chat
// turns can ground on them.
type JournalEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Mood       string    `json:"mood,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Ingested   bool      `json:"ingested"`
}
