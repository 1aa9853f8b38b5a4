// Package factcheck searches published fact-check claims through the Google Fact
// Check Tools API.
package factcheck

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

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	DefaultEndpoint = "https://factchecktools.googleapis.com/v1alpha1/claims:search"
	defaultPageSize = 50
	// defaultMaxPages caps how many nextPageToken hops one batch search follows.
	defaultMaxPages = 3
)

type GoogleClient struct {
	apiKey   string
	endpoint string
	pageSize int
	maxPages int
	client   *http.Client
	limiter  *rate.Limiter
}

func NewGoogleClient(apiKey, endpoint string) *GoogleClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &GoogleClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
		client:   &http.Client{Timeout: 20 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
}

// Search runs claims:search for a batch of queries. The queries are joined into a
// single free-text query; attributing claims back to the queries is the caller's
// job. Result pages are followed through nextPageToken up to maxPages. Claims with
// several reviews are flattened to the first one.
func (c *GoogleClient) Search(ctx context.Context, queries []string) ([]domain.FactCheckClaim, error) {
	query := strings.TrimSpace(strings.Join(queries, " "))
	if query == "" {
		return nil, nil
	}

	claims := []domain.FactCheckClaim{}
	token := ""
	for n := 0; n < c.maxPages; n++ {
		page, err := c.page(ctx, query, token)
		if err != nil {
			return nil, err
		}
		for _, cl := range page.Claims {
			claim := domain.FactCheckClaim{
				ClaimText: cl.Text,
				Claimant:  cl.Claimant,
			}
			if len(cl.ClaimReview) > 0 {
				review := cl.ClaimReview[0]
				claim.Source = review.Publisher.Name
				if claim.Source == "" {
					claim.Source = review.Publisher.Site
				}
				claim.URL = review.URL
				claim.Rating = review.TextualRating
			}
			claims = append(claims, claim)
		}
		token = page.NextPageToken
		if token == "" {
			break
		}
	}
	return claims, nil
}

func (c *GoogleClient) page(ctx context.Context, query, token string) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", fmt.Sprint(c.pageSize))
	if token != "" {
		params.Set("pageToken", token)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claims search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &result, nil
}

type searchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimDate   string `json:"claimDate"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
	NextPageToken string `json:"nextPageToken"`
}
