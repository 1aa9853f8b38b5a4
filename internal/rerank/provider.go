package rerank

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/inference"
)

const (
	ProviderInference = "inference"
	ProviderJina      = "jina"
	ProviderMock      = "mock"
)

// NewCrossEncoder picks the cross-encoder backend by name.
func NewCrossEncoder(provider, apiKey, inferenceURL string) (domain.CrossEncoder, error) {
	switch provider {
	case ProviderInference:
		if inferenceURL == "" {
			return nil, fmt.Errorf("INFERENCE_URL is required for the inference rerank provider")
		}
		return inference.NewClient(inferenceURL, apiKey), nil

	case ProviderJina:
		if apiKey == "" {
			return nil, fmt.Errorf("JINA_API_KEY is required for Jina rerank provider")
		}
		return NewJinaReranker(apiKey, ""), nil

	case ProviderMock:
		return MockCrossEncoder{}, nil

	default:
		return nil, fmt.Errorf("unknown rerank provider: %s (valid options: inference, jina, mock)", provider)
	}
}

// MockCrossEncoder scores a pair by the fraction of query words found in the
// candidate, case-insensitively.
type MockCrossEncoder struct{}

func (MockCrossEncoder) Score(ctx context.Context, pairs []domain.QueryPair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	for i, p := range pairs {
		words := strings.Fields(strings.ToLower(p.Query))
		if len(words) == 0 {
			continue
		}
		candidate := strings.ToLower(p.Candidate)
		hits := 0
		for _, w := range words {
			if strings.Contains(candidate, w) {
				hits++
			}
		}
		scores[i] = float64(hits) / float64(len(words))
	}
	return scores, nil
}
