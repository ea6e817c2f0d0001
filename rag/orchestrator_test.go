package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/intent"
	"github.com/mentalbloom/mentalbloom/models"
	"github.com/mentalbloom/mentalbloom/sentiment"
	"github.com/mentalbloom/mentalbloom/signals"
)

type fakeIntent struct {
	failOn string
}

func (f *fakeIntent) Analyze(_ context.Context, sample models.TextSample) (*models.IntentResult, error) {
	if f.failOn != "" && sample.Text == f.failOn {
		return nil, models.ErrEmptyText
	}
	return &models.IntentResult{Text: sample.Text, PrimaryIntent: "venting", Confidence: 0.5}, nil
}

type fakeSentiment struct{}

func (f *fakeSentiment) Analyze(_ context.Context, sample models.TextSample) (*models.SentimentResult, error) {
	return &models.SentimentResult{Text: sample.Text, Sentiment: "neutral"}, nil
}

type searchCall struct {
	topK   int
	filter map[string]interface{}
}

type fakeSearcher struct {
	calls   []searchCall
	results map[int][]models.RetrievedDocument
}

func (f *fakeSearcher) Query(_ context.Context, _ string, topK int, filter map[string]interface{}) []models.RetrievedDocument {
	f.calls = append(f.calls, searchCall{topK: topK, filter: filter})
	return f.results[len(f.calls)-1]
}

type fakeGenerator struct {
	response string
	err      error

	lastPrompt  string
	lastHistory []models.ChatMessage
	lastInput   string
}

func (f *fakeGenerator) Generate(_ context.Context, systemPrompt string, history []models.ChatMessage, userInput string, _ models.SamplingParams) (string, error) {
	f.lastPrompt = systemPrompt
	f.lastHistory = history
	f.lastInput = userInput
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) Model() string { return "test-model" }

func newTestOrchestrator(t *testing.T, searcher DocumentSearcher, generator Generator) *Orchestrator {
	t.Helper()
	if searcher == nil {
		searcher = &fakeSearcher{}
	}
	if generator == nil {
		generator = &fakeGenerator{response: "ok"}
	}
	o := NewOrchestrator(&fakeIntent{}, &fakeSentiment{}, searcher, generator, 5, zap.NewNop())
	t.Cleanup(o.Close)
	return o
}

func TestEnqueueRecordAfterCloseDropsRecord(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	o.Close()

	// A turn finishing after shutdown must drop its record, not panic.
	assert.NotPanics(t, func() {
		o.enqueueRecord(turnRecord{conversationID: "late"})
	})
	// Close is safe to call again once the queue is drained.
	assert.NotPanics(t, o.Close)
}

func TestChatTurnRequiresUserMessage(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)

	_, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleAssistant, Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}

func TestChatTurnGeneratesConversationID(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)

	resp, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, "ok", resp.Response)
}

func TestChatTurnDocumentQuota(t *testing.T) {
	searcher := &fakeSearcher{results: map[int][]models.RetrievedDocument{
		0: {{Title: "Journal A", RelevanceScore: 0.9}},
		1: {{Title: "General B", RelevanceScore: 0.8}},
	}}
	generator := &fakeGenerator{response: "ok"}
	o := newTestOrchestrator(t, searcher, generator)

	resp, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages:       []models.ChatMessage{{Role: models.RoleUser, Content: "how do I cope?"}},
		UserID:         "u-1",
		IncludeSources: true,
	})
	require.NoError(t, err)

	require.Len(t, searcher.calls, 2)
	// User-private scope first, half the document limit.
	assert.Equal(t, 2, searcher.calls[0].topK)
	assert.Equal(t, map[string]interface{}{"user_id": "u-1", "type": "journal_entry"}, searcher.calls[0].filter)
	// General scope fills what remains.
	assert.Equal(t, 4, searcher.calls[1].topK)
	assert.Nil(t, searcher.calls[1].filter)

	// User documents prepended.
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "Journal A", resp.Sources[0].Title)
	assert.Equal(t, "General B", resp.Sources[1].Title)
}

func TestChatTurnSkipsJournalScopeWithoutUser(t *testing.T) {
	searcher := &fakeSearcher{}
	o := newTestOrchestrator(t, searcher, nil)

	_, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)

	require.Len(t, searcher.calls, 1)
	assert.Equal(t, 5, searcher.calls[0].topK)
	assert.Nil(t, searcher.calls[0].filter)
}

func TestChatTurnSourcesOmittedUnlessRequested(t *testing.T) {
	searcher := &fakeSearcher{results: map[int][]models.RetrievedDocument{
		0: {{Title: "General", RelevanceScore: 0.8}},
	}}
	o := newTestOrchestrator(t, searcher, nil)

	resp, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Sources)
}

func TestChatTurnGenerationFailureIsFatal(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model overloaded")}
	o := newTestOrchestrator(t, nil, generator)

	_, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestChatTurnHistoryExcludesLatest(t *testing.T) {
	generator := &fakeGenerator{response: "ok"}
	o := newTestOrchestrator(t, nil, generator)

	_, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "first"},
			{Role: models.RoleAssistant, Content: "second"},
			{Role: models.RoleUser, Content: "third"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "third", generator.lastInput)
	require.Len(t, generator.lastHistory, 2)
	assert.Equal(t, "first", generator.lastHistory[0].Content)
	assert.Equal(t, "second", generator.lastHistory[1].Content)
}

// Full pipeline over the real fusion engines: a crisis message must flag
// the emergency and force the safety block into the generated prompt.
func TestChatTurnEmergencyPrompt(t *testing.T) {
	intentEngine := intent.NewEngine(
		signals.NewKeywordMatcher(),
		signals.NewEmergencyMatcher(),
		nil, nil, nil, nil,
		zap.NewNop(),
	)
	sentimentEngine := sentiment.NewEngine(
		signals.NewVaderScorer(),
		nil,
		signals.NewEmotionScorer(),
		signals.NewLanguageDetector(),
		nil,
		zap.NewNop(),
	)
	generator := &fakeGenerator{response: "please stay safe"}

	o := NewOrchestrator(intentEngine, sentimentEngine, &fakeSearcher{}, generator, 5, zap.NewNop())
	defer o.Close()

	resp, err := o.ChatTurn(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "I want to kill myself"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "emergency", resp.Intent)
	assert.Contains(t, generator.lastPrompt, "THIS IS A POTENTIAL EMERGENCY SITUATION")
	assert.Contains(t, generator.lastPrompt, "Use a crisis_support response approach.")
}

func TestAnalyzeBatchPartialSuccess(t *testing.T) {
	intents := &fakeIntent{failOn: "text-3"}
	o := NewOrchestrator(intents, &fakeSentiment{}, &fakeSearcher{}, &fakeGenerator{}, 5, zap.NewNop())
	defer o.Close()

	samples := make([]models.TextSample, 5)
	for i := range samples {
		samples[i] = models.TextSample{Text: fmt.Sprintf("text-%d", i+1)}
	}

	batch := o.AnalyzeBatch(context.Background(), samples)

	assert.Equal(t, 5, batch.BatchSize)
	assert.Equal(t, 4, batch.SuccessfulCount)
	assert.Equal(t, 1, batch.FailedCount)
	require.Len(t, batch.Results, 4)

	// Successes keep submission order.
	assert.Equal(t, "text-1", batch.Results[0].Intent.Text)
	assert.Equal(t, "text-2", batch.Results[1].Intent.Text)
	assert.Equal(t, "text-4", batch.Results[2].Intent.Text)
	assert.Equal(t, "text-5", batch.Results[3].Intent.Text)
}

func TestAnalyzeTextRunsBothEngines(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)

	result, err := o.AnalyzeText(context.Background(), models.TextSample{Text: "hello"})
	require.NoError(t, err)
	require.NotNil(t, result.Intent)
	require.NotNil(t, result.Sentiment)
	assert.Equal(t, "venting", result.Intent.PrimaryIntent)
	assert.Equal(t, "neutral", result.Sentiment.Sentiment)
}
