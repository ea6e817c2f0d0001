package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/models"
)

func TestGenerate(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "generated reply"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, "gpt-4o-mini", 0.7, 0.95, 1024, zap.NewNop())

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "earlier"},
		{Role: models.RoleAssistant, Content: "reply"},
	}
	out, err := client.Generate(context.Background(), "system prompt", history, "latest", models.SamplingParams{})
	require.NoError(t, err)
	assert.Equal(t, "generated reply", out)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, 0.7, captured["temperature"])
	assert.Equal(t, float64(1024), captured["max_tokens"])

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 4)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system prompt", first["content"])
	last := messages[3].(map[string]interface{})
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "latest", last["content"])
}

func TestGenerateSamplingOverrides(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("k", server.URL, "m", 0.7, 0.95, 1024, zap.NewNop())

	_, err := client.Generate(context.Background(), "p", nil, "q", models.SamplingParams{
		Temperature: 0.2,
		MaxTokens:   64,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.2, captured["temperature"])
	assert.Equal(t, float64(64), captured["max_tokens"])
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOpenAIClient("k", server.URL, "m", 0.7, 0.95, 1024, zap.NewNop())

	_, err := client.Generate(context.Background(), "p", nil, "q", models.SamplingParams{})
	assert.ErrorContains(t, err, "503")
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewOpenAIClient("k", server.URL, "m", 0.7, 0.95, 1024, zap.NewNop())

	_, err := client.Generate(context.Background(), "p", nil, "q", models.SamplingParams{})
	assert.ErrorContains(t, err, "no choices")
}
