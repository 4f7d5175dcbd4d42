package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultNewsBaseURL = "https://api.tavily.com"

// NewsClientOptions configure a NewsClient.
type NewsClientOptions struct {
	// BaseURL of the Tavily API. Override in tests.
	BaseURL string
	// HTTPClient used for requests.
	HTTPClient *http.Client
	// MaxResults caps the number of articles per search.
	MaxResults int
	// QuerySuffix is appended to every query to scope results.
	QuerySuffix string
}

// NewsClient searches recent market news through the Tavily search API.
type NewsClient struct {
	apiKey string
	opts   NewsClientOptions
}

// NewNewsClient creates a news client. The API key is required; searches
// without one fail with an error.
func NewNewsClient(apiKey string, optFns ...func(o *NewsClientOptions)) *NewsClient {
	opts := NewsClientOptions{
		BaseURL:     defaultNewsBaseURL,
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
		MaxResults:  3,
		QuerySuffix: "Sri Lanka stock market",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &NewsClient{apiKey: apiKey, opts: opts}
}

type newsSearchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
	Topic       string `json:"topic"`
}

type newsSearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs a news search and returns a compact digest, one article per
// line formatted "- Title: content".
func (c *NewsClient) Search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("news search: missing API key")
	}

	payload, err := json.Marshal(newsSearchRequest{
		APIKey:      c.apiKey,
		Query:       strings.TrimSpace(query + " " + c.opts.QuerySuffix),
		SearchDepth: "basic",
		MaxResults:  c.opts.MaxResults,
		Topic:       "news",
	})
	if err != nil {
		return "", fmt.Errorf("news search: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("news search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("news search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news search: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("news search: read response: %w", err)
	}

	var parsed newsSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("news search: decode response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return "No news found.", nil
	}

	lines := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.Content))
	}
	return strings.Join(lines, "\n"), nil
}
