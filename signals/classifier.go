package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mentalbloom/mentalbloom/models"
)

// The learned classifiers run as separate model services. Each client is a
// capability that may be unavailable; fusion callers treat any error as a
// neutral contribution, so these clients only report, never retry.

// IntentClassifier is the supervised text classifier capability.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

// ZeroShotClassifier infers scores for a fixed candidate label set.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, candidates []string) (map[string]float64, error)
}

// SentimentLabel is a binary learned-sentiment verdict.
type SentimentLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentModel is the learned sentiment classifier capability.
type SentimentModel interface {
	Classify(ctx context.Context, text string) (*SentimentLabel, error)
}

// EntityExtractor is the named-entity recognition capability.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]models.Entity, error)
}

// HTTPIntentClassifier calls a classifier service over HTTP.
type HTTPIntentClassifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPIntentClassifier(baseURL string) *HTTPIntentClassifier {
	return &HTTPIntentClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPIntentClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	var response struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	payload := map[string]interface{}{"text": text}
	if err := postJSON(ctx, c.client, c.baseURL+"/classify-intent", payload, &response); err != nil {
		return "unknown", 0, err
	}
	return response.Intent, response.Confidence, nil
}

// HTTPZeroShotClassifier calls a zero-shot classification service.
type HTTPZeroShotClassifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPZeroShotClassifier(baseURL string) *HTTPZeroShotClassifier {
	return &HTTPZeroShotClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPZeroShotClassifier) Classify(ctx context.Context, text string, candidates []string) (map[string]float64, error) {
	var response struct {
		Scores map[string]float64 `json:"scores"`
	}
	payload := map[string]interface{}{"text": text, "candidate_labels": candidates}
	if err := postJSON(ctx, c.client, c.baseURL+"/zero-shot-classify", payload, &response); err != nil {
		return nil, err
	}
	return response.Scores, nil
}

// HTTPSentimentModel calls a learned sentiment service.
type HTTPSentimentModel struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSentimentModel(baseURL string) *HTTPSentimentModel {
	return &HTTPSentimentModel{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPSentimentModel) Classify(ctx context.Context, text string) (*SentimentLabel, error) {
	var response SentimentLabel
	payload := map[string]interface{}{"text": text}
	if err := postJSON(ctx, c.client, c.baseURL+"/classify-sentiment", payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// HTTPEntityExtractor calls an NER service.
type HTTPEntityExtractor struct {
	baseURL string
	client  *http.Client
}

func NewHTTPEntityExtractor(baseURL string) *HTTPEntityExtractor {
	return &HTTPEntityExtractor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPEntityExtractor) Extract(ctx context.Context, text string) ([]models.Entity, error) {
	var response struct {
		Entities []models.Entity `json:"entities"`
	}
	payload := map[string]interface{}{"text": text}
	if err := postJSON(ctx, c.client, c.baseURL+"/extract-entities", payload, &response); err != nil {
		return nil, err
	}
	return response.Entities, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}
	return nil
}
