package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load populates the process environment from the file named by CREDENCE_ENV
// (default .env) and its ".secret" sidecar. Missing files are fine; a file that
// exists but does not parse is an error. Variables already set win.
func Load() error {
	envFile := getenv("CREDENCE_ENV", ".env")
	for _, f := range []string{envFile, envFile + ".secret"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func ServerPort() int { return getInt("SERVER_PORT", 8080) }

func ServerAddr() string { return fmt.Sprintf(":%d", ServerPort()) }

func DatabaseURL() string { return os.Getenv("DATABASE_URL") }

func MigrationsPath() string { return getenv("MIGRATIONS_PATH", "migrations") }

// APIKey guards the /v1 routes. Empty disables auth.
func APIKey() string { return os.Getenv("API_KEY") }

func OpenAIAPIKey() string    { return os.Getenv("OPENAI_API_KEY") }
func AnthropicAPIKey() string { return os.Getenv("ANTHROPIC_API_KEY") }
func GeminiAPIKey() string    { return os.Getenv("GEMINI_API_KEY") }
func CerebrasAPIKey() string  { return os.Getenv("CEREBRAS_API_KEY") }
func JinaAPIKey() string      { return os.Getenv("JINA_API_KEY") }

func FactCheckAPIKey() string { return os.Getenv("GOOGLE_FACT_CHECK_API_KEY") }

func FactCheckURL() string {
	return getenv("FACT_CHECK_URL", "https://factchecktools.googleapis.com/v1alpha1/claims:search")
}

func WikipediaURL() string {
	return getenv("WIKIPEDIA_API_URL", "https://en.wikipedia.org/api/rest_v1/page/summary/")
}

// InferenceURL is the self-hosted model server behind the "inference" NER,
// sentiment and rerank providers.
func InferenceURL() string    { return getenv("INFERENCE_URL", "http://localhost:8000") }
func InferenceAPIKey() string { return os.Getenv("INFERENCE_API_KEY") }

// LLMProvider is one of openai, anthropic, gemini, cerebras, mock.
func LLMProvider() string { return getenv("LLM_PROVIDER", "openai") }

// NERProvider and SentimentProvider are one of inference, llm.
func NERProvider() string       { return getenv("NER_PROVIDER", "inference") }
func SentimentProvider() string { return getenv("SENTIMENT_PROVIDER", "inference") }

// RerankProvider is one of inference, jina, mock, none.
func RerankProvider() string { return getenv("RERANK_PROVIDER", "inference") }

// EmbeddingProvider is one of openai, mock, none. "none" turns dense retrieval off.
func EmbeddingProvider() string { return getenv("EMBEDDING_PROVIDER", "openai") }

var providerKeys = map[string]func() string{
	"openai":    OpenAIAPIKey,
	"anthropic": AnthropicAPIKey,
	"gemini":    GeminiAPIKey,
	"cerebras":  CerebrasAPIKey,
}

// keyFor resolves a provider name to its credential. Keyless providers (mock,
// none) get "", anything unrecognised falls back to the OpenAI key.
func keyFor(provider string) string {
	switch provider {
	case "mock", "none":
		return ""
	}
	if fn, ok := providerKeys[provider]; ok {
		return fn()
	}
	return OpenAIAPIKey()
}

func LLMAPIKey() string       { return keyFor(LLMProvider()) }
func EmbeddingAPIKey() string { return keyFor(EmbeddingProvider()) }

func RateLimitRPS() float64 { return getFloat("RATE_LIMIT_RPS", 100) }
func RateLimitBurst() int   { return getInt("RATE_LIMIT_BURST", 20) }

// LogLevel is one of debug, info, warn, error.
func LogLevel() string { return getenv("LOG_LEVEL", "info") }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt and getFloat treat unparseable or non-positive values as unset.
func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
