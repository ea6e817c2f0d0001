package intent

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/contexttrack"
	"github.com/mentalbloom/mentalbloom/models"
	"github.com/mentalbloom/mentalbloom/signals"
)

const modelVersion = "advanced-intent-1.0"

// mlConfidenceFloor gates the supervised classifier's contribution and,
// inversely, the zero-shot fallback: zero-shot runs only below it, the
// classifier merges only at or above it. The two are never merged on the
// same text.
const mlConfidenceFloor = 0.5

// responseTypes maps a fused intent to the suggested response style.
var responseTypes = map[string]string{
	"venting":               "empathetic_listening",
	"seeking_advice":        "helpful_guidance",
	"emergency":             "crisis_support",
	"gratitude":             "acknowledgment",
	"greeting":              "friendly_greeting",
	"farewell":              "polite_goodbye",
	"general_question":      "informative",
	"sharing_experience":    "validation",
	"seeking_clarification": "explanation",
	"expressing_opinion":    "respectful_engagement",
}

// SuggestedResponseType returns the response style for an intent,
// defaulting to "general".
func SuggestedResponseType(intent string) string {
	if style, ok := responseTypes[intent]; ok {
		return style
	}
	return "general"
}

// KeywordScorer scores text against the fixed intent vocabulary.
type KeywordScorer interface {
	Scores(text string) *signals.ScoreMap
}

// EmergencyMatcher flags crisis phrases.
type EmergencyMatcher interface {
	Match(text string) bool
}

// Tracker is the slice of the context tracker the engine uses.
type Tracker interface {
	PushIntent(ctx context.Context, conversationID, userID string, entry contexttrack.IntentEntry)
	ContextAwareIntent(ctx context.Context, previousMessages []string, conversationID string) string
}

// Engine fuses the independent intent signals into one verdict. Optional
// capabilities (classifier, zeroShot, entities, tracker) may be nil; a nil
// or failing capability contributes its neutral value and never fails the
// pipeline.
type Engine struct {
	keywords   KeywordScorer
	emergency  EmergencyMatcher
	classifier signals.IntentClassifier
	zeroShot   signals.ZeroShotClassifier
	entities   signals.EntityExtractor
	tracker    Tracker
	logger     *zap.Logger
}

func NewEngine(
	keywords KeywordScorer,
	emergency EmergencyMatcher,
	classifier signals.IntentClassifier,
	zeroShot signals.ZeroShotClassifier,
	entities signals.EntityExtractor,
	tracker Tracker,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		keywords:   keywords,
		emergency:  emergency,
		classifier: classifier,
		zeroShot:   zeroShot,
		entities:   entities,
		tracker:    tracker,
		logger:     logger,
	}
}

// Analyze fuses keyword, classifier and zero-shot scores with the
// emergency override and pushes the verdict into conversation history.
// Only empty input is an error.
func (e *Engine) Analyze(ctx context.Context, sample models.TextSample) (*models.IntentResult, error) {
	start := time.Now()

	if strings.TrimSpace(sample.Text) == "" {
		return nil, models.ErrEmptyText
	}

	isEmergency := e.emergency.Match(sample.Text)

	entities := e.extractEntities(ctx, sample.Text)

	mlIntent, mlConfidence := e.classify(ctx, sample.Text)

	// Zero-shot is a fallback for a hesitant classifier, not a parallel
	// signal.
	var zeroShotScores map[string]float64
	if mlConfidence < mlConfidenceFloor {
		zeroShotScores = e.classifyZeroShot(ctx, sample.Text)
	}

	allIntents := e.keywords.Scores(sample.Text)

	for _, label := range sortedByScore(zeroShotScores) {
		score := zeroShotScores[label]
		if existing, ok := allIntents.Get(label); ok {
			allIntents.Set(label, (existing+score*2)/3)
		} else {
			allIntents.Set(label, score)
		}
	}

	if mlConfidence >= mlConfidenceFloor {
		if existing, ok := allIntents.Get(mlIntent); ok {
			allIntents.Set(mlIntent, (existing+mlConfidence*3)/4)
		} else {
			allIntents.Set(mlIntent, mlConfidence)
		}
	}

	if isEmergency {
		allIntents.Set("emergency", 1.0)
	}

	primaryIntent, confidence, ok := allIntents.Max()
	if !ok || confidence == 0 {
		primaryIntent, confidence = "unknown", 0.0
	}

	contextAware := ""
	if e.tracker != nil {
		contextAware = e.tracker.ContextAwareIntent(ctx, sample.PreviousMessages, sample.ConversationID)
	}

	if e.tracker != nil && (sample.UserID != "" || sample.ConversationID != "") {
		e.tracker.PushIntent(ctx, sample.ConversationID, sample.UserID, contexttrack.IntentEntry{
			Text:          sample.Text,
			PrimaryIntent: primaryIntent,
			Confidence:    confidence,
			Timestamp:     time.Now().UTC(),
		})
	}

	return &models.IntentResult{
		Text:                  sample.Text,
		PrimaryIntent:         primaryIntent,
		Confidence:            confidence,
		AllIntents:            allIntents.Map(),
		IsEmergency:           isEmergency,
		Entities:              entities,
		ContextAwareIntent:    contextAware,
		SuggestedResponseType: SuggestedResponseType(primaryIntent),
		Timestamp:             time.Now(),
		ModelVersion:          modelVersion,
		ProcessingTimeMS:      float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func (e *Engine) classify(ctx context.Context, text string) (string, float64) {
	if e.classifier == nil {
		return "unknown", 0
	}
	label, confidence, err := e.classifier.Classify(ctx, text)
	if err != nil {
		e.logger.Warn("intent classifier unavailable", zap.Error(err))
		return "unknown", 0
	}
	return label, confidence
}

func (e *Engine) classifyZeroShot(ctx context.Context, text string) map[string]float64 {
	if e.zeroShot == nil {
		return nil
	}
	scores, err := e.zeroShot.Classify(ctx, text, signals.IntentLabels())
	if err != nil {
		e.logger.Warn("zero-shot classifier unavailable", zap.Error(err))
		return nil
	}
	return scores
}

func (e *Engine) extractEntities(ctx context.Context, text string) []models.Entity {
	if e.entities == nil {
		return []models.Entity{}
	}
	entities, err := e.entities.Extract(ctx, text)
	if err != nil {
		e.logger.Warn("entity extractor unavailable", zap.Error(err))
		return []models.Entity{}
	}
	if entities == nil {
		entities = []models.Entity{}
	}
	return entities
}

// sortedByScore orders zero-shot labels score-descending (label ascending
// on equal scores) so the merge is deterministic.
func sortedByScore(scores map[string]float64) []string {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if scores[labels[i]] != scores[labels[j]] {
			return scores[labels[i]] > scores[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
