package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	openAIModel   = "gpt-4o-mini"
)

type OpenAIClient struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, url: openAIChatURL, model: openAIModel, httpClient: newHTTPClient()}
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	out, err := chatCompletion(ctx, c.httpClient, "openai", c.url, c.apiKey, c.model, prompt)
	return strings.TrimSpace(out), err
}

func (c *OpenAIClient) Recognize(ctx context.Context, text string) ([]domain.RecognizedEntity, error) {
	return recognize(ctx, c, text)
}

func (c *OpenAIClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	return classifySentiment(ctx, c, text)
}
