package hface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/innercalm/backend/internal/domain/emotion"
)

const defaultInferenceURL = "https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"

// Client scores text against a hosted emotion classification model over the
// HuggingFace inference API.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewClient builds an inference API client.
func NewClient(apiKey, url string) *Client {
	endpoint := strings.TrimSpace(url)
	if endpoint == "" {
		endpoint = defaultInferenceURL
	}
	return &Client{
		apiKey: apiKey,
		url:    endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends text to the inference API and maps the returned labels to
// the domain's emotion set.
func (c *Client) Classify(ctx context.Context, text string) (emotion.Scores, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("inference error: status=%d body=%s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}

	// The API wraps single-input results in one extra array level.
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err != nil {
		var flat []labelScore
		if err := json.Unmarshal(body, &flat); err != nil {
			return nil, fmt.Errorf("decode inference response: %w", err)
		}
		nested = [][]labelScore{flat}
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, fmt.Errorf("inference response empty")
	}

	scores := make(emotion.Scores, len(emotion.Labels))
	for _, label := range emotion.Labels {
		scores[label] = 0
	}
	for _, entry := range nested[0] {
		scores[strings.ToLower(entry.Label)] = entry.Score
	}
	return scores, nil
}

var _ emotion.Classifier = (*Client)(nil)
