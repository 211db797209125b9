package planner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xiaot623/tripweaver/internal/adapter"
	"github.com/xiaot623/tripweaver/internal/domain"
)

// Tier names, in resolution order.
const (
	TierPrimary   = "primary"
	TierCache     = "cache"
	TierGenerated = "generated"
)

// strategy is one tier of an agent. fetch receives the candidates accepted
// so far, so later tiers can ground themselves on earlier results.
type strategy[T any] struct {
	tier  string
	fetch func(ctx context.Context, have []T) ([]T, error)
}

// resolution describes what an agent is collecting.
type resolution[T any] struct {
	stage string
	min   int
	max   int
	// key identifies duplicates; an empty key never collides.
	key func(T) string
	// accept filters candidates; nil accepts everything.
	accept func(ctx context.Context, item T) (bool, string)
}

// resolve evaluates strategies in order, accumulating de-duplicated
// candidates until the minimum is met. It never returns an error: every tier
// failure is logged on the run and the next tier is tried.
func resolve[T any](ctx context.Context, run *domain.RunState, r resolution[T], strategies ...strategy[T]) []T {
	out := []T{}
	seen := map[string]bool{}
	counts := map[string]int{}
	blocked := 0

	for _, s := range strategies {
		if len(out) >= r.min {
			break
		}
		if ctx.Err() != nil {
			run.Logf(r.stage, domain.LevelWarn, nil, fmt.Sprintf("%s tier skipped: %v", s.tier, ctx.Err()))
			break
		}

		items, err := runTier(ctx, s, out)
		if err != nil {
			kind := "failed"
			if adapter.IsUnavailable(err) {
				kind = "unavailable"
			}
			log.Printf("WARN: run %s: %s %s tier %s: %v", run.RunID, r.stage, s.tier, kind, err)
			run.Logf(r.stage, domain.LevelWarn, nil, fmt.Sprintf("%s tier %s: %v", s.tier, kind, err))
		}

		added := 0
		for _, item := range items {
			k := r.key(item)
			if k != "" && seen[k] {
				continue
			}
			if r.accept != nil {
				if ok, reason := r.accept(ctx, item); !ok {
					blocked++
					log.Printf("INFO: run %s: %s candidate blocked: %s", run.RunID, r.stage, reason)
					continue
				}
			}
			if k != "" {
				seen[k] = true
			}
			out = append(out, item)
			added++
		}
		counts[s.tier] += added
		if err == nil {
			run.Logf(r.stage, domain.LevelInfo, map[string]int{"items": added},
				fmt.Sprintf("%s tier returned %d usable candidates", s.tier, added))
		}
	}

	if r.max > 0 && len(out) > r.max {
		out = out[:r.max]
	}

	counters := map[string]int{
		"items":       len(out),
		TierPrimary:   counts[TierPrimary],
		TierCache:     counts[TierCache],
		TierGenerated: counts[TierGenerated],
	}
	if blocked > 0 {
		counters["blocked"] = blocked
	}
	level := domain.LevelInfo
	msg := fmt.Sprintf("collected %d %s", len(out), r.stage)
	if len(out) < r.min {
		level = domain.LevelWarn
		msg = fmt.Sprintf("collected %d %s, below the minimum of %d", len(out), r.stage, r.min)
	}
	run.Logf(r.stage, level, counters, msg)
	return out
}

// runTier calls one strategy, turning a panic into an error.
func runTier[T any](ctx context.Context, s strategy[T], have []T) (items []T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			items = nil
			err = fmt.Errorf("%w: panic: %v", adapter.ErrCallFailed, rec)
		}
	}()
	if s.fetch == nil {
		return nil, errors.New("tier not configured")
	}
	return s.fetch(ctx, have)
}
