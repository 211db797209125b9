package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/tripweaver/internal/adapter"
	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/policy"
)

// DefaultHobby is searched when the traveler lists none.
const DefaultHobby = "things to do"

// TagGenerated marks activities that came from the generator.
const TagGenerated = "generated"

// priceBands are per-person USD ranges suggested to the generator, by budget
// tier and hobby category.
var priceBands = map[domain.BudgetTier]map[string][2]int{
	domain.BudgetLow:  {"dining": {8, 25}, "activities": {0, 20}, "entertainment": {5, 15}},
	domain.BudgetMid:  {"dining": {20, 60}, "activities": {15, 50}, "entertainment": {20, 40}},
	domain.BudgetHigh: {"dining": {50, 150}, "activities": {40, 120}, "entertainment": {40, 80}},
}

var activitySchema = listSchema("activities", "activities", map[string]any{
	"title":          map[string]any{"type": "string"},
	"location":       map[string]any{"type": "string"},
	"duration_hours": map[string]any{"type": "number"},
	"est_price":      numberSchema(5),
	"currency":       map[string]any{"type": "string"},
}, "title", "location")

func hobbies(prefs domain.TripPreferences) []string {
	var out []string
	seen := map[string]bool{}
	for _, h := range prefs.Hobbies {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	if len(out) == 0 {
		out = []string{DefaultHobby}
	}
	return out
}

func hobbyCategory(hobby string) string {
	h := strings.ToLower(hobby)
	for _, w := range []string{"dining", "restaurant", "food"} {
		if strings.Contains(h, w) {
			return "dining"
		}
	}
	for _, w := range []string{"nightlife", "bar", "club", "entertainment"} {
		if strings.Contains(h, w) {
			return "entertainment"
		}
	}
	return "activities"
}

func priceBand(tier domain.BudgetTier, hobby string) [2]int {
	bands, ok := priceBands[tier]
	if !ok {
		bands = priceBands[domain.BudgetMid]
	}
	return bands[hobbyCategory(hobby)]
}

func activityCacheKey(dest, hobby string) cache.Key {
	return cache.Key{Category: domain.StageActivities, Destination: dest, Discriminator: hobby}
}

// activityAgent builds the activity catalog and a first itinerary view in snap.
func (p *Planner) activityAgent(ctx context.Context, snap *domain.RunState) {
	prefs := snap.Prefs
	hs := hobbies(prefs)
	r := resolution[domain.Activity]{
		stage: domain.StageActivities,
		min:   p.tuning.Activities.Min,
		max:   p.tuning.Activities.Max,
		key:   activityKeyFunc(p.tuning.DedupeKey),
		accept: admit(p, prefs, "activity", func(a domain.Activity) policy.Candidate {
			return policy.Candidate{
				Text:     a.Title + " " + a.Location,
				Tags:     a.Tags,
				PriceUSD: priceUSD(a.Price),
			}
		}),
	}
	snap.Plan.Activities = resolve(ctx, snap, r,
		strategy[domain.Activity]{tier: TierPrimary, fetch: func(ctx context.Context, _ []domain.Activity) ([]domain.Activity, error) {
			return p.findActivities(ctx, snap, hs)
		}},
		strategy[domain.Activity]{tier: TierCache, fetch: func(ctx context.Context, _ []domain.Activity) ([]domain.Activity, error) {
			return p.cachedActivities(ctx, prefs.Destination, hs)
		}},
		strategy[domain.Activity]{tier: TierGenerated, fetch: func(ctx context.Context, have []domain.Activity) ([]domain.Activity, error) {
			return p.generateActivities(ctx, prefs, hs, have)
		}},
	)
	snap.Plan.Itinerary = BuildItinerary(prefs, snap.Plan.Activities, p.tuning.ExcludeTravelDays)
}

// fanOutLimit bounds concurrent provider calls within one agent. Goroutines
// record their own errors and return nil so one failure never cancels the rest.
const fanOutLimit = 4

// findActivities looks up venues for every hobby concurrently. Results keep
// hobby order. It fails only when every lookup failed.
func (p *Planner) findActivities(ctx context.Context, snap *domain.RunState, hs []string) ([]domain.Activity, error) {
	if p.places == nil {
		return nil, adapter.Unavailable("places", "find", nil)
	}
	dest := snap.Prefs.Destination
	perHobby := make([][]domain.Activity, len(hs))
	errs := make([]error, len(hs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, hobby := range hs {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = fmt.Errorf("%w: panic: %v", adapter.ErrCallFailed, rec)
				}
			}()
			recs, err := p.places.FindPlaces(gctx, hobby, dest)
			if err != nil {
				errs[i] = err
				return nil
			}
			acts := make([]domain.Activity, 0, len(recs))
			for _, rec := range recs {
				if strings.TrimSpace(rec.Name) == "" {
					continue
				}
				loc := strings.TrimSpace(rec.Address)
				if loc == "" {
					loc = dest
				}
				a := domain.Activity{
					Title:       strings.TrimSpace(rec.Name),
					Location:    loc,
					Tags:        append([]string{hobby}, rec.Tags...),
					SourceTitle: rec.Name,
					Provenance:  domain.ProvenanceProvider,
				}
				if rec.PlaceID != "" {
					a.SourceURL = "https://www.google.com/maps/place/?q=place_id:" + rec.PlaceID
				}
				acts = append(acts, a)
			}
			perHobby[i] = acts
			return nil
		})
	}
	_ = g.Wait()

	out := []domain.Activity{}
	var failed []error
	for i, acts := range perHobby {
		if errs[i] != nil {
			failed = append(failed, fmt.Errorf("%s: %w", hs[i], errs[i]))
			continue
		}
		out = append(out, acts...)
	}
	for _, a := range out {
		if a.SourceURL != "" {
			snap.Plan.Sources[a.SourceURL] = domain.SourceRef{Title: a.Title, Snippet: a.Location}
		}
	}
	if len(failed) == len(hs) {
		return nil, errors.Join(failed...)
	}
	if len(failed) > 0 {
		snap.Logf(domain.StageActivities, domain.LevelWarn, map[string]int{"failed_hobbies": len(failed)},
			fmt.Sprintf("places lookup failed for some hobbies: %v", errors.Join(failed...)))
	}
	return out, nil
}

// cachedActivities merges the cached lists of every hobby.
func (p *Planner) cachedActivities(ctx context.Context, dest string, hs []string) ([]domain.Activity, error) {
	var out []domain.Activity
	var errs []error
	for _, hobby := range hs {
		items, err := cacheTier(p.cache, activityCacheKey(dest, hobby), func(a *domain.Activity) {
			a.Provenance = domain.ProvenanceCache
		}).fetch(ctx, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, items...)
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// generateActivities asks the generator for activities for each hobby in
// parallel. Generated items carry the hobby and the generated tag.
func (p *Planner) generateActivities(ctx context.Context, prefs domain.TripPreferences, hs []string, have []domain.Activity) ([]domain.Activity, error) {
	if p.generator == nil {
		return nil, adapter.Unavailable("llm", "generate", nil)
	}
	perHobby := make([][]domain.Activity, len(hs))
	errs := make([]error, len(hs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, hobby := range hs {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = fmt.Errorf("%w: panic: %v", adapter.ErrCallFailed, rec)
				}
			}()
			items, err := generateTier(p.generator, activitySchema, func(have []domain.Activity) string {
				return activityPrompt(prefs, hobby, have)
			}, decodeActivities).fetch(gctx, have)
			if err != nil {
				errs[i] = err
				return nil
			}
			for j := range items {
				items[j].Tags = tagGenerated(hobby, items[j].Tags)
			}
			perHobby[i] = items
			return nil
		})
	}
	_ = g.Wait()

	out := []domain.Activity{}
	var failed []error
	for i, items := range perHobby {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		out = append(out, items...)
	}
	if len(failed) == len(hs) {
		return nil, failed[0]
	}
	return out, nil
}

func tagGenerated(hobby string, tags []string) []string {
	out := []string{hobby}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && t != hobby && t != TagGenerated {
			out = append(out, t)
		}
	}
	return append(out, TagGenerated)
}

func activityPrompt(prefs domain.TripPreferences, hobby string, have []domain.Activity) string {
	band := priceBand(prefs.BudgetTier, hobby)
	known := make([]string, 0, len(have))
	for _, a := range have {
		known = append(known, fmt.Sprintf("%s at %s", a.Title, a.Location))
	}
	return fmt.Sprintf(`Create 6 diverse %s activities in %s.
Use real venue names in %s, give the venue, area and city as the location,
price each between $%d and $%d per person and keep durations between 1.5 and 4 hours
unless the activity is naturally a half or full day.
Venues already found nearby (do not repeat them, use them as a guide to the area):
%s`, hobby, prefs.Destination, prefs.Destination, band[0], band[1], summarize(known, 12))
}
