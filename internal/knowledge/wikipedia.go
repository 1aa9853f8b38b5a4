// Package knowledge fetches short entity summaries from the Wikipedia REST API.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultEndpoint = "https://en.wikipedia.org/api/rest_v1/page/summary/"

type WikipediaClient struct {
	endpoint  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewWikipediaClient(endpoint, userAgent string) *WikipediaClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	if userAgent == "" {
		userAgent = "credence/1.0"
	}
	return &WikipediaClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(20), 10),
	}
}

// Summary returns the page extract for the entity. A missing page is not an error
// and yields an empty summary.
func (c *WikipediaClient) Summary(ctx context.Context, entity string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(entity), " ", "_")
	if title == "" {
		return "", nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+url.PathEscape(title), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("wikipedia API error (status %d): %s", resp.StatusCode, string(body))
	}

	var page struct {
		Type    string `json:"type"`
		Extract string `json:"extract"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	return strings.TrimSpace(page.Extract), nil
}
