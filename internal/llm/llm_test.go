package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/credence/internal/domain"
)

func TestParseEntities(t *testing.T) {
	got, err := parseEntities("```json\n[{\"text\":\"Acme\",\"label\":\"org\"},{\"text\":\"Paris\",\"label\":\" GPE \"}]\n```")
	require.NoError(t, err)
	assert.Equal(t, []domain.RecognizedEntity{
		{Text: "Acme", Label: "ORG"},
		{Text: "Paris", Label: "GPE"},
	}, got)

	got, err = parseEntities("null")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseEntities("not json")
	assert.Error(t, err)
}

func TestParseSentiment(t *testing.T) {
	label, conf, err := parseSentiment(`{"label":"positive","confidence":0.9}`)
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPositive, label)
	assert.InDelta(t, 0.9, conf, 1e-12)

	label, conf, err = parseSentiment("```{\"label\":\"NEGATIVE\",\"confidence\":1.7}```")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNegative, label)
	assert.Equal(t, 1.0, conf)

	_, _, err = parseSentiment("maybe")
	assert.Error(t, err)
}

func TestOpenAIClient_Recognize(t *testing.T) {
	var req chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[{\"text\":\"Acme\",\"label\":\"ORG\"}]"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("key")
	c.url = srv.URL

	entities, err := c.Recognize(context.Background(), "Acme shipped anvils.")
	require.NoError(t, err)
	assert.Equal(t, []domain.RecognizedEntity{{Text: "Acme", Label: "ORG"}}, entities)
	require.Len(t, req.Messages, 1)
	assert.True(t, strings.HasSuffix(req.Messages[0].Content, "Acme shipped anvils."))
}

func TestAnthropicClient_ClassifySentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"label\":\"NEGATIVE\",\"confidence\":0.8}"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("key")
	c.url = srv.URL

	label, conf, err := c.ClassifySentiment(context.Background(), "Markets crashed.")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNegative, label)
	assert.InDelta(t, 0.8, conf, 1e-12)
}

func TestGeminiClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewGeminiClient("key")
	c.url = srv.URL

	_, err := c.Recognize(context.Background(), "text")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.True(t, statusErr.Temporary())
}

func TestCerebrasClient_ClassifySentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"label\":\"POSITIVE\",\"confidence\":0.66}"}}]}`))
	}))
	defer srv.Close()

	c := NewCerebrasClient("key")
	c.url = srv.URL

	label, _, err := c.ClassifySentiment(context.Background(), "Record harvest.")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPositive, label)
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()

	entities, err := m.Recognize(context.Background(), "Acme and Zorbia met in the city.")
	require.NoError(t, err)
	assert.Equal(t, []domain.RecognizedEntity{{Text: "Acme", Label: "ORG"}, {Text: "Zorbia", Label: "ORG"}}, entities)

	m.SentimentError = errors.New("down")
	_, _, err = m.ClassifySentiment(context.Background(), "x")
	assert.Error(t, err)
	assert.Len(t, m.SentimentCalls, 1)
}

func TestNewClient(t *testing.T) {
	for _, p := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCerebras} {
		_, err := NewClient(p, "")
		assert.ErrorIs(t, err, ErrMissingAPIKey, p)

		c, err := NewClient(p, "key")
		require.NoError(t, err, p)
		assert.NotNil(t, c)
	}

	c, err := NewClient(ProviderMock, "")
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	_, err = NewClient("other", "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic, cerebras, gemini, mock, openai")
}
