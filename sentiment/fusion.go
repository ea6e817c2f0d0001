package sentiment

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/contexttrack"
	"github.com/mentalbloom/mentalbloom/models"
	"github.com/mentalbloom/mentalbloom/signals"
)

const modelVersion = "advanced-sentiment-1.0"

// Compound thresholds for the lexicon classification.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// LexiconScorer is the lexicon polarity capability.
type LexiconScorer interface {
	Score(text string) signals.LexiconScores
}

// EmotionScorer is the five-category emotion capability.
type EmotionScorer interface {
	Score(text string) models.EmotionScores
}

// LanguageDetector detects the sample's language code.
type LanguageDetector interface {
	Detect(text string) string
}

// Tracker is the slice of the context tracker the engine uses.
type Tracker interface {
	PushSentiment(ctx context.Context, conversationID, userID string, entry contexttrack.SentimentEntry)
	TrendingSentiment(ctx context.Context, conversationID string) string
	HistoricalSentimentTrend(ctx context.Context, userID string) string
}

// Engine fuses lexicon and learned-model sentiment into one verdict. The
// learned model and the tracker are optional; emotions are informational
// and never feed back into the label.
type Engine struct {
	lexicon  LexiconScorer
	model    signals.SentimentModel
	emotions EmotionScorer
	language LanguageDetector
	tracker  Tracker
	logger   *zap.Logger
}

func NewEngine(
	lexicon LexiconScorer,
	model signals.SentimentModel,
	emotions EmotionScorer,
	language LanguageDetector,
	tracker Tracker,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		lexicon:  lexicon,
		model:    model,
		emotions: emotions,
		language: language,
		tracker:  tracker,
		logger:   logger,
	}
}

// Analyze scores the sample, lets an available English learned model
// override the lexicon verdict, derives conversational trends, and pushes
// the verdict into history. Only empty input is an error.
func (e *Engine) Analyze(ctx context.Context, sample models.TextSample) (*models.SentimentResult, error) {
	start := time.Now()

	if strings.TrimSpace(sample.Text) == "" {
		return nil, models.ErrEmptyText
	}

	lexicon := e.lexicon.Score(sample.Text)
	label := classifyCompound(lexicon.Compound)
	compound := lexicon.Compound

	emotions := e.emotions.Score(sample.Text)
	language := e.language.Detect(sample.Text)

	// The learned model only overrides for its supported language and a
	// binary verdict; otherwise the lexicon result stands.
	if e.model != nil {
		if verdict := e.classifyModel(ctx, sample.Text); verdict != nil && language == "en" {
			switch strings.ToUpper(verdict.Label) {
			case "POSITIVE":
				label = "positive"
				compound = verdict.Score
			case "NEGATIVE":
				label = "negative"
				compound = -verdict.Score
			}
		}
	}

	trending := ""
	historical := ""
	if e.tracker != nil {
		if sample.UserID != "" && sample.ConversationID != "" {
			trending = e.tracker.TrendingSentiment(ctx, sample.ConversationID)
		}
		if sample.UserID != "" {
			historical = e.tracker.HistoricalSentimentTrend(ctx, sample.UserID)
		}
		if sample.UserID != "" || sample.ConversationID != "" {
			e.tracker.PushSentiment(ctx, sample.ConversationID, sample.UserID, contexttrack.SentimentEntry{
				Text:      sample.Text,
				Sentiment: label,
				Compound:  compound,
				Timestamp: time.Now().UTC(),
			})
		}
	}

	return &models.SentimentResult{
		Text:      sample.Text,
		Sentiment: label,
		Scores: models.SentimentScores{
			Positive: lexicon.Positive,
			Negative: lexicon.Negative,
			Neutral:  lexicon.Neutral,
		},
		Compound:                 compound,
		Emotions:                 emotions,
		Language:                 language,
		ContextAwareSentiment:    trending,
		HistoricalSentimentTrend: historical,
		Timestamp:                time.Now(),
		ModelVersion:             modelVersion,
		ProcessingTimeMS:         float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func (e *Engine) classifyModel(ctx context.Context, text string) *signals.SentimentLabel {
	verdict, err := e.model.Classify(ctx, text)
	if err != nil {
		e.logger.Warn("learned sentiment model unavailable", zap.Error(err))
		return nil
	}
	return verdict
}

func classifyCompound(compound float64) string {
	switch {
	case compound >= positiveThreshold:
		return "positive"
	case compound <= negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}
