package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	cerebrasAPIURL = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel  = "llama-3.3-70b"
)

// CerebrasClient talks to Cerebras' OpenAI-compatible endpoint.
type CerebrasClient struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

func NewCerebrasClient(apiKey string) *CerebrasClient {
	return &CerebrasClient{apiKey: apiKey, url: cerebrasAPIURL, model: cerebrasModel, httpClient: newHTTPClient()}
}

func (c *CerebrasClient) complete(ctx context.Context, prompt string) (string, error) {
	out, err := chatCompletion(ctx, c.httpClient, "cerebras", c.url, c.apiKey, c.model, prompt)
	return strings.TrimSpace(out), err
}

func (c *CerebrasClient) Recognize(ctx context.Context, text string) ([]domain.RecognizedEntity, error) {
	return recognize(ctx, c, text)
}

func (c *CerebrasClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	return classifySentiment(ctx, c, text)
}
