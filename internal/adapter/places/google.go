package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xiaot623/tripweaver/internal/adapter"
)

const (
	googleName       = "places"
	googleDefaultURL = "https://maps.googleapis.com"
	searchRadius     = 25000
	maxPlaces        = 20
)

// Google queries the Google Maps geocoding and nearby-search endpoints.
type Google struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewGoogle creates a Places client. baseURL may be empty for the public endpoint.
func NewGoogle(apiKey, baseURL string) *Google {
	if baseURL == "" {
		baseURL = googleDefaultURL
	}
	return &Google{
		APIKey:  apiKey,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID    string   `json:"place_id"`
		Name       string   `json:"name"`
		Vicinity   string   `json:"vicinity"`
		Address    string   `json:"formatted_address"`
		Rating     *float64 `json:"rating"`
		PriceLevel *int     `json:"price_level"`
		Types      []string `json:"types"`
		Geometry   struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// FindPlaces geocodes location, then runs type and keyword searches for
// category around it. Results are deduplicated by place ID and capped at 20.
// Individual searches that fail are skipped; the call fails only when
// nothing could be searched at all.
func (g *Google) FindPlaces(ctx context.Context, category, location string) ([]Record, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return nil, adapter.Unavailable(googleName, "find_places", errors.New("API key is missing"))
	}

	lat, lng, err := g.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	var queries []url.Values
	for _, t := range PlaceTypes(category) {
		queries = append(queries, url.Values{"type": {t}})
	}
	for _, kw := range Keywords(category) {
		queries = append(queries, url.Values{"keyword": {kw}})
	}

	var (
		records []Record
		seen    = map[string]bool{}
		lastErr error
		okCalls int
	)
	for _, q := range queries {
		q.Set("location", fmt.Sprintf("%f,%f", lat, lng))
		q.Set("radius", fmt.Sprint(searchRadius))
		resp, err := g.get(ctx, "/maps/api/place/nearbysearch/json", q)
		if err != nil {
			if adapter.IsUnavailable(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		okCalls++
		for _, r := range resp.Results {
			if r.PlaceID == "" || seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			addr := r.Vicinity
			if addr == "" {
				addr = r.Address
			}
			records = append(records, Record{
				PlaceID:    r.PlaceID,
				Name:       r.Name,
				Address:    addr,
				Rating:     r.Rating,
				PriceLevel: r.PriceLevel,
				Tags:       r.Types,
			})
		}
	}
	if okCalls == 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(records) > maxPlaces {
		records = records[:maxPlaces]
	}
	return records, nil
}

func (g *Google) geocode(ctx context.Context, location string) (float64, float64, error) {
	resp, err := g.get(ctx, "/maps/api/geocode/json", url.Values{"address": {location}})
	if err != nil {
		return 0, 0, err
	}
	if len(resp.Results) == 0 {
		return 0, 0, adapter.CallFailed(googleName, "geocode", fmt.Errorf("no coordinates for %q", location))
	}
	loc := resp.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

func (g *Google) get(ctx context.Context, path string, q url.Values) (*googleResponse, error) {
	q.Set("key", g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, adapter.CallFailed(googleName, path, err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, adapter.Unavailable(googleName, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, adapter.CallFailed(googleName, path, fmt.Errorf("http %d", resp.StatusCode))
	}

	var out googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, adapter.CallFailed(googleName, path, fmt.Errorf("decode response: %w", err))
	}
	switch out.Status {
	case "OK", "ZERO_RESULTS", "":
		return &out, nil
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return nil, adapter.Unavailable(googleName, path, fmt.Errorf("%s: %s", out.Status, out.ErrorMessage))
	default:
		return nil, adapter.CallFailed(googleName, path, fmt.Errorf("%s: %s", out.Status, out.ErrorMessage))
	}
}
