// Package generation wraps the chat completions API used to produce the
// final assistant response.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/models"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	topP        float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

func NewOpenAIClient(apiKey, baseURL, model string, temperature, topP float64, maxTokens int, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		topP:        topP,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
	}
}

// Generate sends the system prompt, prior turns, and the latest user input
// to the model. Per-request sampling params override the configured
// defaults when non-zero.
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt string, history []models.ChatMessage, userInput string, params models.SamplingParams) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userInput})

	temperature := c.temperature
	if params.Temperature != 0 {
		temperature = params.Temperature
	}
	maxTokens := c.maxTokens
	if params.MaxTokens != 0 {
		maxTokens = params.MaxTokens
	}

	requestBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": temperature,
		"top_p":       c.topP,
		"max_tokens":  maxTokens,
	}

	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var response chatResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completions response")
	}

	c.logger.Debug("response generated",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)))

	return response.Choices[0].Message.Content, nil
}

// Model reports the configured model name for response metadata.
func (c *OpenAIClient) Model() string {
	return c.model
}
