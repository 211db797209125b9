package search

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider returns canned results shaped like real search hits, so the
// whole pipeline can run without network access.
type MockProvider struct{}

// NewMockProvider creates a canned search provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Search returns deterministic results derived from the query.
func (m *MockProvider) Search(ctx context.Context, query string, maxResults int, opts ...Option) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lower := strings.ToLower(query)
	var records []Record
	switch {
	case strings.Contains(lower, "flight"):
		airlines := []string{"Emirates", "Kenya Airways", "Qatar Airways", "Etihad"}
		for i, a := range airlines {
			records = append(records, Record{
				Title:   fmt.Sprintf("%s flights - book now", a),
				URL:     fmt.Sprintf("https://flights.example.com/%d", i),
				Content: fmt.Sprintf("%s nonstop departs 0%d:30 arrives 1%d:45. Round trip from $%d.", a, 6+i, 2+i, 420+i*85),
			})
		}
	case strings.Contains(lower, "hotel"):
		names := []string{"Harbour View Hotel", "Old Town Suites", "Marina Residence", "Garden Court Inn"}
		for i, n := range names {
			records = append(records, Record{
				Title:   n,
				URL:     fmt.Sprintf("https://stays.example.com/%d", i),
				Content: fmt.Sprintf("%s rated %d.%d/5. Rooms from $%d per night, free wifi, pool.", n, 4, 1+i*2, 95+i*40),
			})
		}
	default:
		for i := 0; i < 3; i++ {
			records = append(records, Record{
				Title:   fmt.Sprintf("Travel guide %d", i+1),
				URL:     fmt.Sprintf("https://guide.example.com/%d", i),
				Content: "Neighbourhoods, transport tips and local culture for visitors.",
			})
		}
	}
	return trimResults(records, maxResults), nil
}
