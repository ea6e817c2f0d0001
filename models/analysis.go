package models

import (
	"errors"
	"time"
)

// ErrEmptyText is returned when a caller submits empty or whitespace-only
// text. It is a caller error, never retried.
var ErrEmptyText = errors.New("text cannot be empty")

// TextSample is the immutable input unit for all analysis operations.
// The analysis engines never mutate it.
type TextSample struct {
	Text             string    `json:"text"`
	UserID           string    `json:"user_id,omitempty"`
	ConversationID   string    `json:"conversation_id,omitempty"`
	PreviousMessages []string  `json:"previous_messages,omitempty"`
	Timestamp        time.Time `json:"timestamp,omitempty"`
}

// Entity is a named entity extracted from the analyzed text.
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// IntentResult is the fused intent verdict for one text sample.
//
// Invariant: when IsEmergency is set, AllIntents["emergency"] == 1.0 and
// PrimaryIntent == "emergency".
type IntentResult struct {
	Text                  string             `json:"text"`
	PrimaryIntent         string             `json:"primary_intent"`
	Confidence            float64            `json:"confidence"`
	AllIntents            map[string]float64 `json:"all_intents"`
	IsEmergency           bool               `json:"is_emergency"`
	Entities              []Entity           `json:"entities"`
	ContextAwareIntent    string             `json:"context_aware_intent,omitempty"`
	SuggestedResponseType string             `json:"suggested_response_type,omitempty"`
	Timestamp             time.Time          `json:"timestamp"`
	ModelVersion          string             `json:"model_version"`
	ProcessingTimeMS      float64            `json:"processing_time_ms"`
}

// SentimentScores holds the per-category lexicon scores.
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// EmotionScores holds the five fixed emotion categories. The field order
// is the tie-break order when selecting a dominant emotion.
type EmotionScores struct {
	Happy    float64 `json:"happy"`
	Angry    float64 `json:"angry"`
	Surprise float64 `json:"surprise"`
	Sad      float64 `json:"sad"`
	Fear     float64 `json:"fear"`
}

// SentimentResult is the fused sentiment verdict for one text sample.
type SentimentResult struct {
	Text                     string          `json:"text"`
	Sentiment                string          `json:"sentiment"`
	Scores                   SentimentScores `json:"scores"`
	Compound                 float64         `json:"compound"`
	Emotions                 EmotionScores   `json:"emotions"`
	Language                 string          `json:"language"`
	ContextAwareSentiment    string          `json:"context_aware_sentiment,omitempty"`
	HistoricalSentimentTrend string          `json:"historical_sentiment_trend,omitempty"`
	Timestamp                time.Time       `json:"timestamp"`
	ModelVersion             string          `json:"model_version"`
	ProcessingTimeMS         float64         `json:"processing_time_ms"`
}

// AnalysisResult bundles both verdicts for a single sample.
type AnalysisResult struct {
	Intent           *IntentResult    `json:"intent"`
	Sentiment        *SentimentResult `json:"sentiment"`
	ProcessingTimeMS float64          `json:"processing_time_ms"`
}

// BatchAnalysisResult aggregates independent per-item analyses. Successes
// keep the original submission order; one item failing never aborts the
// batch.
type BatchAnalysisResult struct {
	Results               []*AnalysisResult `json:"results"`
	BatchSize             int               `json:"batch_size"`
	SuccessfulCount       int               `json:"successful_count"`
	FailedCount           int               `json:"failed_count"`
	TotalProcessingTimeMS float64           `json:"total_processing_time_ms"`
}
