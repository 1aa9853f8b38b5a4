package embedding

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
	// ProviderNone disables embeddings; retrieval then stays lexical.
	ProviderNone = "none"
)

var ErrMissingAPIKey = errors.New("embedding provider requires an API key")

// NewClient picks the embedding backend by name. ProviderNone yields a nil client
// and no error.
func NewClient(provider, apiKey string) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderMock:
		return NewMockClient(), nil
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
		}
		return NewOpenAIClient(apiKey), nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q (valid options: openai, mock, none)", provider)
}
