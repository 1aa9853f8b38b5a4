package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 60 * time.Second

// StatusError is a non-200 answer from a provider API.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.Status, e.Body)
}

// Temporary reports whether the call may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// postJSON sends payload as JSON and decodes a 200 response into out.
func postJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Provider: provider, Status: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", provider, err)
	}
	return nil
}

// chatRequest and chatResponse are the OpenAI chat-completions shapes, which
// Cerebras also speaks.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func chatCompletion(ctx context.Context, hc *http.Client, provider, url, apiKey, model, prompt string) (string, error) {
	var result chatResponse
	err := postJSON(ctx, hc, provider, url,
		map[string]string{"Authorization": "Bearer " + apiKey},
		chatRequest{Model: model, Messages: []chatMessage{{Role: "user", Content: prompt}}},
		&result,
	)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("%s API error: %s", provider, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s API returned no choices", provider)
	}
	return result.Choices[0].Message.Content, nil
}
