package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

var ErrMissingAPIKey = errors.New("llm: api key is required")

// Client is a prompted language model serving as both entity recognizer and
// sentiment classifier.
type Client interface {
	domain.NERClient
	domain.SentimentClassifier
}

// keyed lists the hosted providers and the env var their key comes from.
var keyed = map[string]struct {
	env string
	new func(apiKey string) Client
}{
	ProviderOpenAI:    {"OPENAI_API_KEY", func(k string) Client { return NewOpenAIClient(k) }},
	ProviderAnthropic: {"ANTHROPIC_API_KEY", func(k string) Client { return NewAnthropicClient(k) }},
	ProviderGemini:    {"GEMINI_API_KEY", func(k string) Client { return NewGeminiClient(k) }},
	ProviderCerebras:  {"CEREBRAS_API_KEY", func(k string) Client { return NewCerebrasClient(k) }},
}

// NewClient builds the named provider. Every provider except mock needs a key.
func NewClient(provider, apiKey string) (Client, error) {
	if provider == ProviderMock {
		return NewMockClient(), nil
	}
	p, ok := keyed[provider]
	if !ok {
		names := make([]string, 0, len(keyed)+1)
		for name := range keyed {
			names = append(names, name)
		}
		names = append(names, ProviderMock)
		sort.Strings(names)
		return nil, fmt.Errorf("unknown LLM provider %q (valid options: %s)", provider, strings.Join(names, ", "))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s for provider %s", ErrMissingAPIKey, p.env, provider)
	}
	return p.new(apiKey), nil
}
