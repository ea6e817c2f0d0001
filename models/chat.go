package models

import "time"

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Name    string      `json:"name,omitempty"`
}

// SamplingParams are forwarded to the generator. Zero values mean
// "use the configured defaults".
type SamplingParams struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ChatRequest is one chat turn. A missing ConversationID is generated.
type ChatRequest struct {
	Messages       []ChatMessage  `json:"messages"`
	UserID         string         `json:"user_id,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	IncludeSources bool           `json:"include_sources"`
	Sampling       SamplingParams `json:"sampling,omitempty"`
}

// Source is a citation for a retrieved document used as grounding.
type Source struct {
	Title          string  `json:"title"`
	URL            string  `json:"url,omitempty"`
	ContentSnippet string  `json:"content_snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ChatResponse is the assembled reply for one chat turn.
type ChatResponse struct {
	Response         string    `json:"response"`
	Sources          []Source  `json:"sources"`
	Sentiment        string    `json:"sentiment,omitempty"`
	Intent           string    `json:"intent,omitempty"`
	ConversationID   string    `json:"conversation_id"`
	Model            string    `json:"model"`
	Timestamp        time.Time `json:"timestamp"`
	ProcessingTimeMS float64   `json:"processing_time_ms"`
}
