// Package rag orchestrates the analysis engines, the retriever and the
// generator into the analysis and chat-turn operations.
package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mentalbloom/mentalbloom/metrics"
	"github.com/mentalbloom/mentalbloom/models"
	"github.com/mentalbloom/mentalbloom/prompt"
)

// ErrNoUserMessage is returned when a chat request carries no user-role
// message. It is a caller error.
var ErrNoUserMessage = errors.New("no user message found in the conversation")

// ErrGenerationFailed marks a failed model call. It is fatal to the
// request and never retried.
var ErrGenerationFailed = errors.New("response generation failed")

// IntentAnalyzer produces a fused intent verdict for one sample.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, sample models.TextSample) (*models.IntentResult, error)
}

// SentimentAnalyzer produces a fused sentiment verdict for one sample.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, sample models.TextSample) (*models.SentimentResult, error)
}

// DocumentSearcher answers filtered similarity queries. Failures degrade
// to an empty result inside the implementation.
type DocumentSearcher interface {
	Query(ctx context.Context, query string, topK int, filter map[string]interface{}) []models.RetrievedDocument
}

// Generator produces the final assistant response.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []models.ChatMessage, userInput string, params models.SamplingParams) (string, error)
	Model() string
}

// turnRecord is the payload for post-response logging. Records are
// drained by a single worker so request handling never blocks on it.
type turnRecord struct {
	conversationID string
	userID         string
	intent         string
	sentiment      string
	emergency      bool
	documentCount  int
	elapsed        time.Duration
}

// Orchestrator runs the single-pass pipeline for analysis and chat turns.
type Orchestrator struct {
	intents      IntentAnalyzer
	sentiments   SentimentAnalyzer
	retriever    DocumentSearcher
	generator    Generator
	maxDocuments int
	logger       *zap.Logger

	mu      sync.Mutex
	closed  bool
	records chan turnRecord
	done    chan struct{}
}

func NewOrchestrator(
	intents IntentAnalyzer,
	sentiments SentimentAnalyzer,
	retriever DocumentSearcher,
	generator Generator,
	maxDocuments int,
	logger *zap.Logger,
) *Orchestrator {
	o := &Orchestrator{
		intents:      intents,
		sentiments:   sentiments,
		retriever:    retriever,
		generator:    generator,
		maxDocuments: maxDocuments,
		logger:       logger,
		records:      make(chan turnRecord, 64),
		done:         make(chan struct{}),
	}
	go o.drainRecords()
	return o
}

// AnalyzeText runs intent and sentiment fusion concurrently over one
// sample. Both engines degrade their own signal failures internally, so an
// error here means invalid input.
func (o *Orchestrator) AnalyzeText(ctx context.Context, sample models.TextSample) (*models.AnalysisResult, error) {
	start := time.Now()

	var (
		intentResult    *models.IntentResult
		sentimentResult *models.SentimentResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := o.intents.Analyze(gctx, sample)
		if err != nil {
			return err
		}
		intentResult = r
		return nil
	})
	g.Go(func() error {
		r, err := o.sentiments.Analyze(gctx, sample)
		if err != nil {
			return err
		}
		sentimentResult = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues("single").Inc()
	if intentResult.IsEmergency {
		metrics.EmergenciesDetected.Inc()
	}

	return &models.AnalysisResult{
		Intent:           intentResult,
		Sentiment:        sentimentResult,
		ProcessingTimeMS: float64(time.Since(start).Milliseconds()),
	}, nil
}

// AnalyzeBatch analyzes each sample independently. One item failing never
// aborts the batch; successes keep their submission order.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, samples []models.TextSample) *models.BatchAnalysisResult {
	start := time.Now()

	batch := &models.BatchAnalysisResult{
		Results:   make([]*models.AnalysisResult, 0, len(samples)),
		BatchSize: len(samples),
	}

	for i, sample := range samples {
		result, err := o.AnalyzeText(ctx, sample)
		if err != nil {
			batch.FailedCount++
			metrics.BatchItems.WithLabelValues("failed").Inc()
			o.logger.Warn("batch item failed",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		batch.SuccessfulCount++
		metrics.BatchItems.WithLabelValues("succeeded").Inc()
		batch.Results = append(batch.Results, result)
	}

	batch.TotalProcessingTimeMS = float64(time.Since(start).Milliseconds())
	return batch
}

// ChatTurn runs the full single-pass pipeline: resolve the conversation,
// fuse signals and retrieve documents concurrently, compose the prompt and
// generate the reply. Generation failure is fatal to the request; every
// earlier stage degrades.
func (o *Orchestrator) ChatTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	start := time.Now()

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	userMessage, ok := latestUserMessage(req.Messages)
	if !ok {
		return nil, ErrNoUserMessage
	}

	sample := models.TextSample{
		Text:             userMessage.Content,
		UserID:           req.UserID,
		ConversationID:   conversationID,
		PreviousMessages: priorContents(req.Messages),
	}

	var (
		analysis  *models.AnalysisResult
		documents []models.RetrievedDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := o.AnalyzeText(gctx, sample)
		if err != nil {
			return err
		}
		analysis = r
		return nil
	})
	g.Go(func() error {
		documents = o.retrieveDocuments(gctx, userMessage.Content, req.UserID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	systemPrompt := prompt.Compose(analysis.Sentiment, analysis.Intent, documents)

	history := chatHistory(req.Messages)
	responseText, err := o.generator.Generate(ctx, systemPrompt, history, userMessage.Content, req.Sampling)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var sources []models.Source
	if req.IncludeSources {
		sources = make([]models.Source, 0, len(documents))
		for _, doc := range documents {
			sources = append(sources, models.Source{
				Title:          doc.Title,
				URL:            doc.URL,
				ContentSnippet: doc.ContentSnippet,
				RelevanceScore: doc.RelevanceScore,
			})
		}
	}

	elapsed := time.Since(start)
	metrics.ChatTurnDuration.Observe(elapsed.Seconds())
	metrics.DocumentsRetrieved.Observe(float64(len(documents)))

	o.enqueueRecord(turnRecord{
		conversationID: conversationID,
		userID:         req.UserID,
		intent:         analysis.Intent.PrimaryIntent,
		sentiment:      analysis.Sentiment.Sentiment,
		emergency:      analysis.Intent.IsEmergency,
		documentCount:  len(documents),
		elapsed:        elapsed,
	})

	return &models.ChatResponse{
		Response:         responseText,
		Sources:          sources,
		Sentiment:        analysis.Sentiment.Sentiment,
		Intent:           analysis.Intent.PrimaryIntent,
		ConversationID:   conversationID,
		Model:            o.generator.Model(),
		Timestamp:        time.Now().UTC(),
		ProcessingTimeMS: float64(elapsed.Milliseconds()),
	}, nil
}

// retrieveDocuments fetches up to half of maxDocuments from the user's
// journal entries first, then fills the remaining slots from the general
// corpus, user documents prepended.
func (o *Orchestrator) retrieveDocuments(ctx context.Context, query, userID string) []models.RetrievedDocument {
	var journalDocs []models.RetrievedDocument
	if userID != "" {
		journalDocs = o.retriever.Query(ctx, query, o.maxDocuments/2, map[string]interface{}{
			"user_id": userID,
			"type":    "journal_entry",
		})
		if len(journalDocs) > 0 {
			o.logger.Info("found relevant journal entries",
				zap.Int("count", len(journalDocs)),
				zap.String("user_id", userID))
		}
	}

	generalDocs := o.retriever.Query(ctx, query, o.maxDocuments-len(journalDocs), nil)
	return append(journalDocs, generalDocs...)
}

// Close flushes the post-response record queue. Records enqueued after
// Close are dropped.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.records)
	o.mu.Unlock()
	<-o.done
}

func (o *Orchestrator) enqueueRecord(rec turnRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		o.logger.Warn("turn record queue closed, dropping record",
			zap.String("conversation_id", rec.conversationID))
		return
	}
	select {
	case o.records <- rec:
	default:
		o.logger.Warn("turn record queue full, dropping record",
			zap.String("conversation_id", rec.conversationID))
	}
}

func (o *Orchestrator) drainRecords() {
	defer close(o.done)
	for rec := range o.records {
		o.logger.Info("chat turn completed",
			zap.String("conversation_id", rec.conversationID),
			zap.String("user_id", rec.userID),
			zap.String("intent", rec.intent),
			zap.String("sentiment", rec.sentiment),
			zap.Bool("is_emergency", rec.emergency),
			zap.Int("documents", rec.documentCount),
			zap.Duration("elapsed", rec.elapsed))
	}
}

func latestUserMessage(messages []models.ChatMessage) (models.ChatMessage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i], true
		}
	}
	return models.ChatMessage{}, false
}

// priorContents returns the user/assistant message contents preceding the
// final turn, for the context-aware intent rules.
func priorContents(messages []models.ChatMessage) []string {
	contents := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == models.RoleUser || m.Role == models.RoleAssistant {
			contents = append(contents, m.Content)
		}
	}
	if len(contents) <= 1 {
		return nil
	}
	return contents[:len(contents)-1]
}

// chatHistory returns every turn except the latest, as passed to the
// generator alongside the composed system prompt.
func chatHistory(messages []models.ChatMessage) []models.ChatMessage {
	if len(messages) <= 1 {
		return nil
	}
	return messages[:len(messages)-1]
}
