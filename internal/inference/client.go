// Package inference talks to the self-hosted model server that serves the local
// NER, sentiment and cross-encoder models.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Harshitk-cp/credence/internal/domain"
)

// Client is a thin JSON client for the model server. Endpoints:
//
//	POST /ner        {"text": ...}                 -> {"entities": [{"text", "label"}]}
//	POST /sentiment  {"text": ...}                 -> {"label", "score"}
//	POST /rerank     {"pairs": [[query, cand]...]} -> {"scores": [...]}
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var (
	_ domain.NERClient           = (*Client)(nil)
	_ domain.SentimentClassifier = (*Client)(nil)
	_ domain.CrossEncoder        = (*Client)(nil)
)

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Recognize(ctx context.Context, text string) ([]domain.RecognizedEntity, error) {
	var resp struct {
		Entities []domain.RecognizedEntity `json:"entities"`
	}
	if err := c.post(ctx, "/ner", map[string]any{"text": text}, &resp); err != nil {
		return nil, fmt.Errorf("ner: %w", err)
	}
	return resp.Entities, nil
}

func (c *Client) ClassifySentiment(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	var resp struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := c.post(ctx, "/sentiment", map[string]any{"text": text}, &resp); err != nil {
		return "", 0, fmt.Errorf("sentiment: %w", err)
	}
	label := domain.SentimentNegative
	if strings.EqualFold(resp.Label, string(domain.SentimentPositive)) {
		label = domain.SentimentPositive
	}
	return label, resp.Score, nil
}

func (c *Client) Score(ctx context.Context, pairs []domain.QueryPair) ([]float64, error) {
	if len(pairs) == 0 {
		return []float64{}, nil
	}
	payload := make([][2]string, len(pairs))
	for i, p := range pairs {
		payload[i] = [2]string{p.Query, p.Candidate}
	}

	var resp struct {
		Scores []float64 `json:"scores"`
	}
	if err := c.post(ctx, "/rerank", map[string]any{"pairs": payload}, &resp); err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	if len(resp.Scores) != len(pairs) {
		return nil, fmt.Errorf("rerank: got %d scores for %d pairs", len(resp.Scores), len(pairs))
	}
	return resp.Scores, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
