package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaot623/tripweaver/internal/adapter"
	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/extract"
	"github.com/xiaot623/tripweaver/internal/policy"
)

var stayDomains = []string{"booking.com", "expedia.com", "hotels.com", "agoda.com"}

var stayHighlights = []string{
	"pool", "spa", "beach", "breakfast", "gym", "wifi", "parking",
	"city center", "sea view", "family", "airport shuttle", "rooftop",
}

var staySchema = listSchema("stays", "stays", map[string]any{
	"name":          map[string]any{"type": "string"},
	"area":          map[string]any{"type": "string"},
	"nightly_price": numberSchema(30),
	"currency":      map[string]any{"type": "string"},
	"score":         map[string]any{"type": "number"},
	"highlights":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
}, "name", "area")

func stayCacheKey(prefs domain.TripPreferences) cache.Key {
	return cache.Key{
		Category:      domain.StageStays,
		Destination:   prefs.Destination,
		Discriminator: fmt.Sprintf("%s|%s|%s", prefs.StartDate, prefs.EndDate, prefs.BudgetTier),
	}
}

// stayAgent collects lodging options into snap.Plan.Stays.
func (p *Planner) stayAgent(ctx context.Context, snap *domain.RunState) {
	prefs := snap.Prefs
	r := resolution[domain.StayOption]{
		stage: domain.StageStays,
		min:   p.tuning.Stays.Min,
		max:   p.tuning.Stays.Max,
		key:   stayKey,
		accept: admit(p, prefs, "stay", func(s domain.StayOption) policy.Candidate {
			return policy.Candidate{
				Text:     s.Name + " " + s.Area + " " + strings.Join(s.Highlights, " "),
				Tags:     s.Highlights,
				PriceUSD: priceUSD(s.Price),
			}
		}),
	}
	snap.Plan.Stays = resolve(ctx, snap, r,
		strategy[domain.StayOption]{tier: TierPrimary, fetch: func(ctx context.Context, _ []domain.StayOption) ([]domain.StayOption, error) {
			return p.searchStays(ctx, snap)
		}},
		cacheTier(p.cache, stayCacheKey(prefs), func(s *domain.StayOption) { s.Provenance = domain.ProvenanceCache }),
		generateTier(p.generator, staySchema, func(have []domain.StayOption) string {
			return stayPrompt(prefs, have)
		}, func(raw []byte) ([]domain.StayOption, error) {
			return decodeStays(raw, prefs.Destination)
		}),
	)
}

// searchStays queries booking sites. Roundup articles are skipped since
// they name many hotels at once.
func (p *Planner) searchStays(ctx context.Context, snap *domain.RunState) ([]domain.StayOption, error) {
	if p.search == nil {
		return nil, adapter.Unavailable("search", "stays", nil)
	}
	prefs := snap.Prefs
	q := fmt.Sprintf("hotels %s booking.com expedia.com %s %s best areas %s",
		prefs.Destination, prefs.StartDate, prefs.EndDate, prefs.TripType)
	recs, err := p.search.Search(ctx, strings.TrimSpace(q), 12, search.IncludeDomains(stayDomains...))
	if err != nil {
		return nil, err
	}
	snap.Artifacts[domain.StageStays] = recs

	out := []domain.StayOption{}
	for _, r := range recs {
		name := strings.TrimSpace(r.Title)
		if name == "" || extract.IsListicle(name) {
			continue
		}
		text := r.Title + " " + r.Content
		s := domain.StayOption{
			Name:        name,
			Area:        prefs.Destination,
			Price:       extract.Price(text, extract.CategoryStay),
			Score:       extract.Rating(text),
			Highlights:  highlights(text),
			SourceURL:   r.URL,
			SourceTitle: r.Title,
			Provenance:  domain.ProvenanceProvider,
		}
		if r.URL != "" {
			s.Links = []string{r.URL}
			snap.Plan.Sources[r.URL] = sourceRef(r.Title, r.Content)
		}
		out = append(out, s)
	}
	return out, nil
}

func highlights(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, h := range stayHighlights {
		if strings.Contains(lower, h) {
			out = append(out, h)
		}
	}
	return out
}

func stayPrompt(prefs domain.TripPreferences, have []domain.StayOption) string {
	known := make([]string, 0, len(have))
	for _, s := range have {
		known = append(known, fmt.Sprintf("%s in %s (%s per night)", s.Name, s.Area, describeMoney(s.Price)))
	}
	trip := prefs.TripType
	if trip == "" {
		trip = "leisure"
	}
	return fmt.Sprintf(`Suggest real hotels or apartments in %s for a %s trip from %s to %s, %s budget, %d adult(s).
Give the neighborhood as the area and a realistic nightly price.
Stays already found (do not repeat them):
%s`, prefs.Destination, trip, prefs.StartDate, prefs.EndDate, prefs.BudgetTier, prefs.Adults, summarize(known, 10))
}
