// Package search provides web search clients used for destination, flight and stay research.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// Record is one search hit.
type Record struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Provider runs a web search.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int, opts ...Option) ([]Record, error)
}

// Options tune a single search call.
type Options struct {
	IncludeDomains []string
	Depth          string
}

// Option mutates Options.
type Option func(*Options)

// IncludeDomains restricts results to the given domains where the provider supports it.
func IncludeDomains(domains ...string) Option {
	return func(o *Options) {
		o.IncludeDomains = append(o.IncludeDomains, domains...)
	}
}

// Depth selects the provider's search depth ("basic" or "advanced").
func Depth(depth string) Option {
	return func(o *Options) {
		o.Depth = depth
	}
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// RateLimited wraps a provider with a shared token bucket.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimited allows qps searches per second with a burst of one.
// A non-positive qps disables limiting.
func NewRateLimited(next Provider, qps float64) *RateLimited {
	limit := rate.Inf
	if qps > 0 {
		limit = rate.Limit(qps)
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Search waits for a token, then delegates.
func (r *RateLimited) Search(ctx context.Context, query string, maxResults int, opts ...Option) ([]Record, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Search(ctx, query, maxResults, opts...)
}

var errEmptyQuery = errors.New("query is empty")

func trimResults(records []Record, maxResults int) []Record {
	if maxResults > 0 && len(records) > maxResults {
		return records[:maxResults]
	}
	return records
}

func validQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errEmptyQuery
	}
	return nil
}
