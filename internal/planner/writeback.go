package planner

import (
	"context"
	"encoding/json"
	"log"

	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/domain"
)

// writeBack stores provider-sourced results for later runs. It runs after the
// plan is final, on copies, and nothing it does can reach the returned plan.
func (p *Planner) writeBack(run *domain.RunState) {
	if p.cache == nil {
		return
	}
	if _, noop := p.cache.(cache.Noop); noop {
		return
	}

	entries := map[cache.Key][]byte{}
	prefs := run.Prefs

	byHobby := map[string][]domain.Activity{}
	for _, a := range run.Plan.Activities {
		if a.Provenance != domain.ProvenanceProvider || len(a.Tags) == 0 {
			continue
		}
		byHobby[a.Tags[0]] = append(byHobby[a.Tags[0]], a.Clone())
	}
	for hobby, acts := range byHobby {
		put(entries, activityCacheKey(prefs.Destination, hobby), acts)
	}

	var flights []domain.FlightOption
	for _, f := range run.Plan.Flights {
		if f.Provenance == domain.ProvenanceProvider {
			flights = append(flights, f.Clone())
		}
	}
	if len(flights) > 0 {
		put(entries, flightCacheKey(prefs), flights)
	}

	var stays []domain.StayOption
	for _, s := range run.Plan.Stays {
		if s.Provenance == domain.ProvenanceProvider {
			stays = append(stays, s.Clone())
		}
	}
	if len(stays) > 0 {
		put(entries, stayCacheKey(prefs), stays)
	}

	if len(entries) == 0 {
		return
	}

	runID := run.RunID
	timeout := p.tuning.CacheWriteTimeout
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("WARN: run %s: cache write-back panicked: %v", runID, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		for key, data := range entries {
			if err := p.cache.Put(ctx, key, data); err != nil {
				log.Printf("WARN: run %s: cache write-back for %s failed: %v", runID, key, err)
			}
		}
	}()
}

func put[T any](entries map[cache.Key][]byte, key cache.Key, items []T) {
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("WARN: failed to encode cache entry %s: %v", key, err)
		return
	}
	entries[key] = data
}
