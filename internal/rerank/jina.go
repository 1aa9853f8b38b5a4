// Package rerank provides cross-encoder relevance scoring for (query, candidate)
// pairs.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const jinaEndpoint = "https://api.jina.ai/v1/rerank"

// JinaReranker scores pairs with the Jina AI rerank API. Pairs sharing a query are
// sent as one request.
type JinaReranker struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	backoffs []time.Duration
}

// NewJinaReranker creates a reranker using the Jina AI rerank API.
// If model is empty, defaults to "jina-reranker-v2-base-multilingual".
func NewJinaReranker(apiKey, model string) *JinaReranker {
	if model == "" {
		model = "jina-reranker-v2-base-multilingual"
	}
	return &JinaReranker{
		apiKey:   apiKey,
		model:    model,
		endpoint: jinaEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(750*time.Millisecond), 1),
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

func (r *JinaReranker) Score(ctx context.Context, pairs []domain.QueryPair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	if len(pairs) == 0 {
		return scores, nil
	}

	groups := make(map[string][]int)
	var order []string
	for i, p := range pairs {
		if _, ok := groups[p.Query]; !ok {
			order = append(order, p.Query)
		}
		groups[p.Query] = append(groups[p.Query], i)
	}

	for _, query := range order {
		idx := groups[query]
		docs := make([]string, len(idx))
		for j, i := range idx {
			docs[j] = pairs[i].Candidate
		}
		relevance, err := r.rerank(ctx, query, docs)
		if err != nil {
			return nil, err
		}
		for j, i := range idx {
			scores[i] = relevance[j]
		}
	}
	return scores, nil
}

func (r *JinaReranker) rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(jinaRerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := r.doWithRetry(ctx, jsonBody)
	if err != nil {
		return nil, err
	}

	var jinaResp jinaRerankResponse
	if err := json.Unmarshal(respBody, &jinaResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	// Documents missing from the response score 0.
	scores := make([]float64, len(documents))
	for _, result := range jinaResp.Results {
		if result.Index >= 0 && result.Index < len(scores) {
			scores[result.Index] = result.RelevanceScore
		}
	}
	return scores, nil
}

// doWithRetry retries on transport errors, 429 and 5xx, honoring Retry-After on 429.
func (r *JinaReranker) doWithRetry(ctx context.Context, jsonBody []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= len(r.backoffs); attempt++ {
		if attempt > 0 {
			delay := r.backoffs[attempt-1]
			if ra, ok := lastErr.(retryAfterError); ok && ra.after > 0 {
				delay = ra.after
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+r.apiKey)

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			retry := retryAfterError{msg: fmt.Sprintf("jina API error (status %d): %s", resp.StatusCode, string(body))}
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
				retry.after = min(time.Duration(seconds)*time.Second, 30*time.Second)
			}
			lastErr = retry
			continue
		}

		return nil, fmt.Errorf("jina API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("jina API request failed after %d retries: %w", len(r.backoffs), lastErr)
}

type retryAfterError struct {
	msg   string
	after time.Duration
}

func (e retryAfterError) Error() string { return e.msg }

type jinaRerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type jinaRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}
