package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaot623/tripweaver/internal/adapter"
	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/extract"
	"github.com/xiaot623/tripweaver/internal/policy"
)

var airlines = []string{
	"Emirates", "Qatar Airways", "Qatar", "Etihad", "Turkish Airlines", "Turkish",
	"KLM", "British Airways", "Lufthansa", "Air France", "Kenya Airways",
	"Ethiopian", "flydubai", "Air Arabia", "Saudia", "EgyptAir", "United",
	"Delta", "American Airlines", "Singapore Airlines",
}

var flightSchema = listSchema("flights", "flights", map[string]any{
	"summary":       map[string]any{"type": "string"},
	"airline":       map[string]any{"type": "string"},
	"flight_number": map[string]any{"type": "string"},
	"depart_time":   map[string]any{"type": "string"},
	"arrive_time":   map[string]any{"type": "string"},
	"stops":         map[string]any{"type": "integer"},
	"est_price":     numberSchema(100),
	"currency":      map[string]any{"type": "string"},
}, "summary", "airline")

func flightCacheKey(prefs domain.TripPreferences) cache.Key {
	return cache.Key{
		Category:      domain.StageFlights,
		Destination:   prefs.Destination,
		Discriminator: fmt.Sprintf("%s|%s|%s", prefs.Origin, prefs.StartDate, prefs.EndDate),
	}
}

// flightAgent collects flight options into snap.Plan.Flights.
func (p *Planner) flightAgent(ctx context.Context, snap *domain.RunState) {
	prefs := snap.Prefs
	r := resolution[domain.FlightOption]{
		stage: domain.StageFlights,
		min:   p.tuning.Flights.Min,
		max:   p.tuning.Flights.Max,
		key:   flightKey,
		accept: admit(p, prefs, "flight", func(f domain.FlightOption) policy.Candidate {
			return policy.Candidate{Text: f.Summary + " " + f.Airline, PriceUSD: priceUSD(f.Price)}
		}),
	}
	snap.Plan.Flights = resolve(ctx, snap, r,
		strategy[domain.FlightOption]{tier: TierPrimary, fetch: func(ctx context.Context, _ []domain.FlightOption) ([]domain.FlightOption, error) {
			return p.searchFlights(ctx, snap)
		}},
		cacheTier(p.cache, flightCacheKey(prefs), func(f *domain.FlightOption) { f.Provenance = domain.ProvenanceCache }),
		generateTier(p.generator, flightSchema, func(have []domain.FlightOption) string {
			return flightPrompt(prefs, have)
		}, decodeFlights),
	)
}

// searchFlights turns search hits into flight options. A hit is kept only
// when its text yields an airline, a price or a flight number.
func (p *Planner) searchFlights(ctx context.Context, snap *domain.RunState) ([]domain.FlightOption, error) {
	if p.search == nil {
		return nil, adapter.Unavailable("search", "flights", nil)
	}
	prefs := snap.Prefs
	q := fmt.Sprintf("flights from %s to %s %s direct schedule booking airlines",
		prefs.Origin, prefs.Destination, prefs.StartDate)
	recs, err := p.search.Search(ctx, q, 15)
	if err != nil {
		return nil, err
	}
	snap.Artifacts[domain.StageFlights] = recs

	out := []domain.FlightOption{}
	for _, r := range recs {
		text := r.Title + " " + r.Content
		f := domain.FlightOption{
			Summary:      strings.TrimSpace(r.Title),
			Airline:      extract.Pick(text, airlines),
			FlightNumber: extract.FlightNumber(text),
			Stops:        extract.Stops(text),
			Price:        extract.Price(text, extract.CategoryFlight),
			SourceURL:    r.URL,
			SourceTitle:  r.Title,
			Provenance:   domain.ProvenanceProvider,
		}
		if f.Airline == "" && f.Price == nil && f.FlightNumber == "" {
			continue
		}
		if f.Summary == "" {
			f.Summary = fmt.Sprintf("%s to %s", prefs.Origin, prefs.Destination)
		}
		f.DepartTime, f.ArriveTime = extract.Times(r.Content)
		if r.URL != "" {
			f.Links = []string{r.URL}
			snap.Plan.Sources[r.URL] = sourceRef(r.Title, r.Content)
		}
		out = append(out, f)
	}
	return out, nil
}

func flightPrompt(prefs domain.TripPreferences, have []domain.FlightOption) string {
	known := make([]string, 0, len(have))
	for _, f := range have {
		known = append(known, fmt.Sprintf("%s (%s, %s)", f.Summary, f.Airline, describeMoney(f.Price)))
	}
	return fmt.Sprintf(`Suggest realistic flight options from %s to %s departing %s and returning %s for %d adult(s).
Use airlines that actually serve this route. Prices are round-trip economy fares.
Options already found (do not repeat them):
%s`, prefs.Origin, prefs.Destination, prefs.StartDate, prefs.EndDate, prefs.Adults, summarize(known, 8))
}
