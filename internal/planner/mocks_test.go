package planner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/adapter/llm"
	"github.com/xiaot623/tripweaver/internal/adapter/places"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/domain"
)

// MockSearch is a mock implementation of search.Provider for testing
type MockSearch struct {
	mock.Mock
}

func (m *MockSearch) Search(ctx context.Context, query string, maxResults int, opts ...search.Option) ([]search.Record, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.Record), args.Error(1)
}

// MockPlaces is a mock implementation of places.Provider for testing
type MockPlaces struct {
	mock.Mock
}

func (m *MockPlaces) FindPlaces(ctx context.Context, category, location string) ([]places.Record, error) {
	args := m.Called(ctx, category, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]places.Record), args.Error(1)
}

// MockGenerator is a mock implementation of llm.Generator for testing
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, schema llm.Schema) (json.RawMessage, error) {
	args := m.Called(ctx, prompt, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockCache is a mock implementation of cache.Cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key cache.Key) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCache) Put(ctx context.Context, key cache.Key, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func dubaiPrefs() domain.TripPreferences {
	return domain.TripPreferences{
		Origin:      "NBO",
		Destination: "Dubai",
		StartDate:   domain.NewDate(2025, time.November, 10),
		EndDate:     domain.NewDate(2025, time.November, 16),
		Adults:      2,
		BudgetTier:  domain.BudgetMid,
		Hobbies:     []string{"golf", "fine dining"},
	}
}

func venues(n int, prefix string) []places.Record {
	out := make([]places.Record, n)
	for i := range out {
		out[i] = places.Record{
			PlaceID: prefix + string(rune('a'+i)),
			Name:    prefix + " venue " + string(rune('A'+i)),
			Address: "Dubai Marina",
		}
	}
	return out
}

func hoursPtr(v float64) *float64 { return &v }
