package places

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider returns a fixed set of venues per category.
type MockProvider struct {
	// PerCategory is the number of venues returned for each call.
	PerCategory int
}

// NewMockProvider creates a canned places provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{PerCategory: 3}
}

// FindPlaces returns PerCategory venues named after the category.
func (m *MockProvider) FindPlaces(ctx context.Context, category, location string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := titleCase(category)
	types := PlaceTypes(category)
	out := make([]Record, 0, m.PerCategory)
	for i := 0; i < m.PerCategory; i++ {
		rating := 4.0 + float64(i)/10
		out = append(out, Record{
			PlaceID: fmt.Sprintf("mock-%s-%d", squash(category), i),
			Name:    fmt.Sprintf("%s Spot %d", title, i+1),
			Address: fmt.Sprintf("%d Central Avenue, %s", 10+i, location),
			Rating:  &rating,
			Tags:    types,
		})
	}
	return out, nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
