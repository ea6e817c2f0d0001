package contexttrack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	conversationCap = 20
	userCap         = 50
	userTTL         = 30 * 24 * time.Hour
	trendWindow     = 5
	historyWindow   = 10
)

// IntentEntry is one stored intent observation.
type IntentEntry struct {
	Text          string    `json:"text"`
	PrimaryIntent string    `json:"primary_intent"`
	Confidence    float64   `json:"confidence"`
	Timestamp     time.Time `json:"timestamp"`
}

// SentimentEntry is one stored sentiment observation.
type SentimentEntry struct {
	Text      string    `json:"text"`
	Sentiment string    `json:"sentiment"`
	Compound  float64   `json:"compound"`
	Timestamp time.Time `json:"timestamp"`
}

// Tracker keeps bounded per-conversation and per-user history in Redis and
// derives conversational labels from it. Every method degrades to a no-op
// or empty label when the store is unreachable; store trouble is logged,
// never surfaced.
type Tracker struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func New(rdb *redis.Client, logger *zap.Logger) *Tracker {
	return &Tracker{rdb: rdb, logger: logger}
}

func conversationIntentKey(id string) string    { return fmt.Sprintf("conversation:%s:intents", id) }
func conversationSentimentKey(id string) string { return fmt.Sprintf("conversation:%s", id) }
func userIntentKey(id string) string            { return fmt.Sprintf("user:%s:intents", id) }
func userSentimentKey(id string) string         { return fmt.Sprintf("user:%s:sentiment", id) }

// PushIntent appends an intent entry: conversation history is capped at
// the 20 most recent entries, user history at 50 with a 30-day expiry
// refreshed on each write.
func (t *Tracker) PushIntent(ctx context.Context, conversationID, userID string, entry IntentEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		t.logger.Error("failed to marshal intent entry", zap.Error(err))
		return
	}
	if conversationID != "" {
		t.pushCapped(ctx, conversationIntentKey(conversationID), payload, conversationCap, 0)
	}
	if userID != "" {
		t.pushCapped(ctx, userIntentKey(userID), payload, userCap, userTTL)
	}
}

// PushSentiment appends a sentiment entry under the same capping rules.
func (t *Tracker) PushSentiment(ctx context.Context, conversationID, userID string, entry SentimentEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		t.logger.Error("failed to marshal sentiment entry", zap.Error(err))
		return
	}
	if conversationID != "" {
		t.pushCapped(ctx, conversationSentimentKey(conversationID), payload, conversationCap, 0)
	}
	if userID != "" {
		t.pushCapped(ctx, userSentimentKey(userID), payload, userCap, userTTL)
	}
}

func (t *Tracker) pushCapped(ctx context.Context, key string, payload []byte, cap int64, ttl time.Duration) {
	pipe := t.rdb.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, cap-1)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("failed to store context entry", zap.String("key", key), zap.Error(err))
	}
}

// ContextAwareIntent derives an intent label from recent conversation
// history. The effective history is previousMessages when supplied,
// otherwise the stored conversation intents (most-recent-first). Rules are
// evaluated in order; the first match wins, otherwise the label is empty.
func (t *Tracker) ContextAwareIntent(ctx context.Context, previousMessages []string, conversationID string) string {
	recent := previousMessages
	if len(recent) == 0 && conversationID != "" {
		for _, entry := range t.recentIntents(ctx, conversationID, trendWindow) {
			recent = append(recent, entry.Text)
		}
	}
	if len(recent) == 0 {
		return ""
	}

	if strings.HasSuffix(recent[len(recent)-1], "?") {
		return "answering_question"
	}

	if len(recent) >= 3 {
		short := 0
		for _, msg := range recent {
			if len(strings.Fields(msg)) < 5 {
				short++
			}
		}
		if short >= 2 {
			return "casual_conversation"
		}
	}

	joined := strings.Join(recent, " ")
	if strings.Contains(strings.ToLower(joined), "help") && strings.Contains(joined, "?") {
		return "follow_up_to_question"
	}

	return ""
}

// TrendingSentiment averages the compound of the most recent five stored
// entries for the conversation. Empty when no entries exist.
func (t *Tracker) TrendingSentiment(ctx context.Context, conversationID string) string {
	entries := t.recentSentiments(ctx, conversationSentimentKey(conversationID), trendWindow)
	if len(entries) == 0 {
		return ""
	}
	total := 0.0
	for _, entry := range entries {
		total += entry.Compound
	}
	avg := total / float64(len(entries))
	switch {
	case avg >= 0.05:
		return "trending_positive"
	case avg <= -0.05:
		return "trending_negative"
	default:
		return "trending_neutral"
	}
}

// HistoricalSentimentTrend compares the three most recent compounds
// against the three oldest within the last ten stored entries for the
// user. Requires at least three entries.
func (t *Tracker) HistoricalSentimentTrend(ctx context.Context, userID string) string {
	entries := t.recentSentiments(ctx, userSentimentKey(userID), historyWindow)
	if len(entries) < 3 {
		return ""
	}
	compounds := make([]float64, len(entries))
	for i, entry := range entries {
		compounds[i] = entry.Compound
	}

	recentAvg := (compounds[0] + compounds[1] + compounds[2]) / 3
	n := len(compounds)
	olderAvg := (compounds[n-1] + compounds[n-2] + compounds[n-3]) / 3

	switch {
	case recentAvg > olderAvg+0.1:
		return "improving"
	case recentAvg < olderAvg-0.1:
		return "deteriorating"
	default:
		return "stable"
	}
}

// RecentConversationSentiments exposes the stored entries most-recent-first,
// capped to the requested count.
func (t *Tracker) RecentConversationSentiments(ctx context.Context, conversationID string, count int) []SentimentEntry {
	return t.recentSentiments(ctx, conversationSentimentKey(conversationID), count)
}

func (t *Tracker) recentIntents(ctx context.Context, conversationID string, count int) []IntentEntry {
	raw, err := t.rdb.LRange(ctx, conversationIntentKey(conversationID), 0, int64(count-1)).Result()
	if err != nil {
		t.logger.Warn("failed to read intent history", zap.String("conversation_id", conversationID), zap.Error(err))
		return nil
	}
	entries := make([]IntentEntry, 0, len(raw))
	for _, item := range raw {
		var entry IntentEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (t *Tracker) recentSentiments(ctx context.Context, key string, count int) []SentimentEntry {
	raw, err := t.rdb.LRange(ctx, key, 0, int64(count-1)).Result()
	if err != nil {
		t.logger.Warn("failed to read sentiment history", zap.String("key", key), zap.Error(err))
		return nil
	}
	entries := make([]SentimentEntry, 0, len(raw))
	for _, item := range raw {
		var entry SentimentEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
