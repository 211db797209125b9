package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/tripweaver/internal/adapter"
)

const (
	tavilyName       = "tavily"
	tavilyDefaultURL = "https://api.tavily.com"
)

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey  string
	BaseURL string
	client  *http.Client
	// MaxBackoff caps the wait between retries after a 429.
	MaxBackoff time.Duration
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string) *Tavily {
	return NewTavilyWithClient(apiKey, &http.Client{Timeout: 15 * time.Second})
}

// NewTavilyWithClient constructs a Tavily search provider using the supplied HTTP client.
func NewTavilyWithClient(apiKey string, client *http.Client) *Tavily {
	return &Tavily{APIKey: apiKey, BaseURL: tavilyDefaultURL, client: client, MaxBackoff: 8 * time.Second}
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int, opts ...Option) ([]Record, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, adapter.Unavailable(tavilyName, "search", errors.New("API key is missing"))
	}
	if err := validQuery(query); err != nil {
		return nil, adapter.CallFailed(tavilyName, "search", err)
	}
	o := buildOptions(opts)
	if o.Depth == "" {
		o.Depth = "basic"
	}

	body := map[string]any{
		"query":        query,
		"api_key":      t.APIKey,
		"search_depth": o.Depth,
		"max_results":  maxResults,
	}
	if len(o.IncludeDomains) > 0 {
		body["include_domains"] = o.IncludeDomains
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, adapter.CallFailed(tavilyName, "search", err)
	}

	var resp *http.Response
	delay := 500 * time.Millisecond
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(t.BaseURL, "/")+"/search", bytes.NewReader(payload))
		if err != nil {
			return nil, adapter.CallFailed(tavilyName, "search", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = t.client.Do(req)
		if err != nil {
			return nil, adapter.Unavailable(tavilyName, "search", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay up to MaxBackoff.
		if delay > t.MaxBackoff {
			return nil, adapter.CallFailed(tavilyName, "search", errors.New("rate limited"))
		}
		select {
		case <-ctx.Done():
			return nil, adapter.CallFailed(tavilyName, "search", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, adapter.Unavailable(tavilyName, "search", fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, adapter.CallFailed(tavilyName, "search", fmt.Errorf("http %d", resp.StatusCode))
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, adapter.CallFailed(tavilyName, "search", fmt.Errorf("decode response: %w", err))
	}

	records := make([]Record, 0, len(response.Results))
	for _, r := range response.Results {
		records = append(records, Record{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return trimResults(records, maxResults), nil
}
