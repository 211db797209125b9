// Package app wires configured providers into a planner.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/adapter/llm"
	"github.com/xiaot623/tripweaver/internal/adapter/places"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/config"
	"github.com/xiaot623/tripweaver/internal/planner"
	"github.com/xiaot623/tripweaver/internal/policy"
)

// NewPlanner builds a planner from cfg. The returned func releases provider connections.
// A cache that cannot be reached is logged and skipped.
func NewPlanner(ctx context.Context, cfg *config.Config) (*planner.Planner, func(), error) {
	tuning, err := cfg.PlannerTuning()
	if err != nil {
		return nil, nil, err
	}

	opts := []planner.Option{
		planner.WithTuning(tuning),
		planner.WithSearch(newSearch(cfg)),
		planner.WithPlaces(newPlaces(cfg)),
		planner.WithGenerator(llm.NewGenerator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, cfg.MockMode())),
	}

	closer := func() {}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cache.RedisOptions{URL: cfg.RedisURL, TTL: cfg.CacheTTL})
		if err != nil {
			log.Printf("WARN: cache disabled: %v", err)
		} else {
			opts = append(opts, planner.WithCache(rc))
			closer = func() {
				if err := rc.Close(); err != nil {
					log.Printf("WARN: failed to close cache: %v", err)
				}
			}
		}
	}

	if tuning.PolicyEnabled {
		engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("failed to initialize policy engine: %w", err)
		}
		opts = append(opts, planner.WithPolicy(engine))
	}

	return planner.New(opts...), closer, nil
}

func newSearch(cfg *config.Config) search.Provider {
	var p search.Provider
	switch {
	case cfg.MockMode():
		p = search.NewMockProvider()
	case cfg.SearchProvider == "duckduckgo":
		p = search.NewDuckDuckGo()
	default:
		if cfg.TavilyAPIKey == "" {
			log.Println("WARN: TAVILY_API_KEY is empty, web search will report unavailable")
		}
		p = search.NewTavily(cfg.TavilyAPIKey)
	}
	return search.NewRateLimited(p, cfg.SearchQPS)
}

func newPlaces(cfg *config.Config) places.Provider {
	if cfg.MockMode() {
		return places.NewMockProvider()
	}
	if cfg.PlacesAPIKey == "" {
		log.Println("WARN: GOOGLE_PLACES_API_KEY is empty, points of interest will report unavailable")
	}
	return places.NewGoogle(cfg.PlacesAPIKey, cfg.PlacesBaseURL)
}
