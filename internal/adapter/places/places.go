// Package places finds points of interest for a hobby near a destination.
package places

import (
	"context"
	"sort"
	"strings"
)

// Record is one point of interest.
type Record struct {
	PlaceID    string   `json:"place_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
	Tags       []string `json:"tags"`
}

// Provider looks up venues for a category (usually a hobby) around a location.
type Provider interface {
	FindPlaces(ctx context.Context, category, location string) ([]Record, error)
}

// hobbyPlaceTypes maps hobbies to directory place types.
var hobbyPlaceTypes = map[string][]string{
	"dining":        {"restaurant"},
	"fine dining":   {"restaurant"},
	"restaurants":   {"restaurant"},
	"nightlife":     {"night_club", "bar"},
	"bars":          {"bar"},
	"shopping":      {"shopping_mall", "store"},
	"golf":          {"golf_course"},
	"beach":         {"natural_feature"},
	"culture":       {"museum", "art_gallery", "tourist_attraction"},
	"wellness":      {"spa", "gym"},
	"outdoor":       {"park"},
	"adventure":     {"tourist_attraction"},
	"entertainment": {"amusement_park", "movie_theater"},
}

// hobbyKeywords holds keyword searches that sharpen a hobby beyond its place type.
var hobbyKeywords = map[string][]string{
	"fine dining": {"fine dining", "upscale"},
	"nightlife":   {"nightclub", "rooftop bar"},
	"beach":       {"beach", "waterfront"},
	"adventure":   {"adventure", "tours"},
	"wellness":    {"spa", "massage"},
	"culture":     {"museum", "heritage"},
}

// PlaceTypes returns up to two place types for a hobby, falling back to "establishment".
func PlaceTypes(hobby string) []string {
	squashed := squash(hobby)
	if squashed == "" {
		return []string{"establishment"}
	}
	var types []string
	seen := map[string]bool{}
	for key, ts := range hobbyPlaceTypes {
		k := squash(key)
		if strings.Contains(squashed, k) || strings.Contains(k, squashed) {
			for _, t := range ts {
				if !seen[t] {
					seen[t] = true
					types = append(types, t)
				}
			}
		}
	}
	if len(types) == 0 {
		return []string{"establishment"}
	}
	sort.Strings(types)
	if len(types) > 2 {
		types = types[:2]
	}
	return types
}

// Keywords returns up to two keyword searches for a hobby.
func Keywords(hobby string) []string {
	if kw, ok := hobbyKeywords[strings.ToLower(strings.TrimSpace(hobby))]; ok {
		return kw
	}
	return []string{hobby}
}

func squash(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}
