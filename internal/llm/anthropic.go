package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	// Entity lists for long articles are the largest answers we ask for.
	anthropicMaxTokens = 2048
)

type AnthropicClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey, url: anthropicMessagesURL, httpClient: newHTTPClient()}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	var result anthropicResponse
	err := postJSON(ctx, c.httpClient, "anthropic", c.url,
		map[string]string{"x-api-key": c.apiKey, "anthropic-version": anthropicVersion},
		anthropicRequest{
			Model:     anthropicModel,
			MaxTokens: anthropicMaxTokens,
			Messages:  []chatMessage{{Role: "user", Content: prompt}},
		},
		&result,
	)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s", result.Error.Message)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic API returned no text content")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (c *AnthropicClient) Recognize(ctx context.Context, text string) ([]domain.RecognizedEntity, error) {
	return recognize(ctx, c, text)
}

func (c *AnthropicClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	return classifySentiment(ctx, c, text)
}
