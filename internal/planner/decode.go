package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/extract"
)

// Generated records are decoded in two steps: the loose JSON is reduced to
// a list of string-keyed objects with known aliases renamed, then each
// object is weakly decoded on its own so one bad element never sinks the
// rest of the batch.

var (
	flightAliases = map[string]string{
		"title":   "summary",
		"name":    "summary",
		"carrier": "airline",
		"price":   "est_price",
		"fare":    "est_price",
		"url":     "booking_url",
	}
	stayAliases = map[string]string{
		"title":           "name",
		"hotel":           "name",
		"neighborhood":    "area",
		"location":        "area",
		"price":           "nightly_price",
		"price_per_night": "nightly_price",
		"rating":          "score",
		"url":             "booking_url",
	}
	activityAliases = map[string]string{
		"name":     "title",
		"price":    "est_price",
		"cost":     "est_price",
		"duration": "duration_hours",
		"hours":    "duration_hours",
		"address":  "location",
		"url":      "source_url",
	}
)

// decodeList finds the candidate list in raw. It accepts a bare array, an
// object holding listKey, or an object whose first array-valued field (by
// key order) holds the list.
func decodeList(raw []byte, listKey string, aliases map[string]string) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse generated JSON: %w", err)
	}

	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case map[string]any:
		if l, ok := t[listKey].([]any); ok {
			list = l
			break
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if l, ok := t[k].([]any); ok {
				list = l
				break
			}
		}
		if list == nil {
			// a single object is a list of one
			list = []any{t}
		}
	default:
		return nil, fmt.Errorf("generated JSON is a %T, not a list", v)
	}

	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, renameKeys(m, aliases))
	}
	return out, nil
}

func renameKeys(m map[string]any, aliases map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ToLower(strings.TrimSpace(k))
		if alias, ok := aliases[key]; ok {
			if _, taken := m[alias]; taken {
				continue
			}
			key = alias
		}
		out[key] = v
	}
	return out
}

func weakDecode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

type generatedFlight struct {
	Summary      string `mapstructure:"summary"`
	Airline      string `mapstructure:"airline"`
	FlightNumber string `mapstructure:"flight_number"`
	DepartTime   string `mapstructure:"depart_time"`
	ArriveTime   string `mapstructure:"arrive_time"`
	Stops        any    `mapstructure:"stops"`
	EstPrice     any    `mapstructure:"est_price"`
	Currency     string `mapstructure:"currency"`
	BookingURL   string `mapstructure:"booking_url"`
}

type generatedStay struct {
	Name         string `mapstructure:"name"`
	Area         string `mapstructure:"area"`
	NightlyPrice any    `mapstructure:"nightly_price"`
	Currency     string `mapstructure:"currency"`
	Score        any    `mapstructure:"score"`
	Highlights   any    `mapstructure:"highlights"`
	BookingURL   string `mapstructure:"booking_url"`
}

type generatedActivity struct {
	Title         string `mapstructure:"title"`
	Location      string `mapstructure:"location"`
	DurationHours any    `mapstructure:"duration_hours"`
	EstPrice      any    `mapstructure:"est_price"`
	Currency      string `mapstructure:"currency"`
	Tags          any    `mapstructure:"tags"`
	SourceURL     string `mapstructure:"source_url"`
}

// decodeFlights maps generated JSON to flight options. Elements without a
// summary are dropped.
func decodeFlights(raw []byte) ([]domain.FlightOption, error) {
	objs, err := decodeList(raw, "flights", flightAliases)
	if err != nil {
		return nil, err
	}
	out := []domain.FlightOption{}
	for _, obj := range objs {
		var g generatedFlight
		if err := weakDecode(obj, &g); err != nil {
			continue
		}
		if strings.TrimSpace(g.Summary) == "" {
			continue
		}
		f := domain.FlightOption{
			Summary:      strings.TrimSpace(g.Summary),
			Airline:      g.Airline,
			FlightNumber: g.FlightNumber,
			DepartTime:   g.DepartTime,
			ArriveTime:   g.ArriveTime,
			Price:        money(g.EstPrice, g.Currency, extract.CategoryFlight),
			Provenance:   domain.ProvenanceGenerated,
		}
		if n, ok := extract.Number(g.Stops); ok && n >= 0 && n <= 5 {
			stops := int(n)
			f.Stops = &stops
		}
		if g.BookingURL != "" {
			f.Links = []string{g.BookingURL}
		}
		out = append(out, f)
	}
	return out, nil
}

// decodeStays maps generated JSON to stay options. Elements without a name
// are dropped; a missing area falls back to the destination.
func decodeStays(raw []byte, destination string) ([]domain.StayOption, error) {
	objs, err := decodeList(raw, "stays", stayAliases)
	if err != nil {
		return nil, err
	}
	out := []domain.StayOption{}
	for _, obj := range objs {
		var g generatedStay
		if err := weakDecode(obj, &g); err != nil {
			continue
		}
		if strings.TrimSpace(g.Name) == "" {
			continue
		}
		area := strings.TrimSpace(g.Area)
		if area == "" {
			area = destination
		}
		s := domain.StayOption{
			Name:       strings.TrimSpace(g.Name),
			Area:       area,
			Price:      money(g.NightlyPrice, g.Currency, extract.CategoryStay),
			Highlights: stringList(g.Highlights),
			Provenance: domain.ProvenanceGenerated,
		}
		if n, ok := extract.Number(g.Score); ok && n >= 0 && n <= 10 {
			s.Score = &n
		}
		if g.BookingURL != "" {
			s.Links = []string{g.BookingURL}
		}
		out = append(out, s)
	}
	return out, nil
}

// decodeActivities maps generated JSON to activities. Title and location
// are required; durations outside (0, 24] are nulled.
func decodeActivities(raw []byte) ([]domain.Activity, error) {
	objs, err := decodeList(raw, "activities", activityAliases)
	if err != nil {
		return nil, err
	}
	out := []domain.Activity{}
	for _, obj := range objs {
		var g generatedActivity
		if err := weakDecode(obj, &g); err != nil {
			continue
		}
		title := strings.TrimSpace(g.Title)
		location := strings.TrimSpace(g.Location)
		if title == "" || location == "" {
			continue
		}
		a := domain.Activity{
			Title:      title,
			Location:   location,
			Price:      money(g.EstPrice, g.Currency, extract.CategoryActivity),
			Tags:       stringList(g.Tags),
			SourceURL:  g.SourceURL,
			Provenance: domain.ProvenanceGenerated,
		}
		if n, ok := durationHours(g.DurationHours); ok && n > 0 && n <= 24 {
			a.DurationHours = &n
		}
		out = append(out, a)
	}
	return out, nil
}

// durationHours reads a loose duration. Strings go through the duration
// phrase parser first ("half day", "90 minutes") and then plain number coercion.
func durationHours(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		if d := extract.Duration(s); d != nil {
			return *d, true
		}
	}
	return extract.Number(v)
}

// stringList keeps the non-empty strings of a loose list. A bare string is a
// one-element list; other element types are skipped.
func stringList(v any) []string {
	var items []any
	switch t := v.(type) {
	case string:
		items = []any{t}
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// money coerces a loose price into Money, or nil if it is missing or implausible.
func money(v any, currency string, cat extract.Category) *domain.Money {
	if m, ok := v.(map[string]any); ok {
		if c, ok := m["currency"].(string); ok && currency == "" {
			currency = c
		}
		v = m["amount"]
	}
	amount, ok := extract.Number(v)
	if !ok {
		return nil
	}
	if currency == "" {
		if s, ok := v.(string); ok {
			currency = extract.Currency(s)
		}
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if !extract.Plausible(cat, amount, currency) {
		return nil
	}
	return domain.NewMoney(amount, currency)
}
