package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/Harshitk-cp/credence/internal/domain"
)

// MockClient is a configurable model client for local runs and tests.
// Set the response fields to control what each method returns. With no entities
// configured, Recognize falls back to tagging capitalized words as ORG.
type MockClient struct {
	mu sync.Mutex

	RecognizeResponse   []domain.RecognizedEntity
	RecognizeError      error
	SentimentLabel      domain.SentimentLabel
	SentimentConfidence float64
	SentimentError      error

	// Call tracking for assertions
	RecognizeCalls []string
	SentimentCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		SentimentLabel:      domain.SentimentPositive,
		SentimentConfidence: 0.5,
	}
}

func (m *MockClient) Recognize(ctx context.Context, text string) ([]domain.RecognizedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecognizeCalls = append(m.RecognizeCalls, text)
	if m.RecognizeError != nil {
		return nil, m.RecognizeError
	}
	if m.RecognizeResponse != nil {
		return m.RecognizeResponse, nil
	}

	var out []domain.RecognizedEntity
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, `.,;:!?"'()`)
		if len(w) > 1 && w[0] >= 'A' && w[0] <= 'Z' {
			out = append(out, domain.RecognizedEntity{Text: w, Label: "ORG"})
		}
	}
	return out, nil
}

func (m *MockClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentLabel, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentimentCalls = append(m.SentimentCalls, text)
	if m.SentimentError != nil {
		return "", 0, m.SentimentError
	}
	return m.SentimentLabel, m.SentimentConfidence, nil
}
