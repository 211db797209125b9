package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripweaver/internal/config"
	"github.com/xiaot623/tripweaver/internal/domain"
)

func mockConfig() *config.Config {
	cfg := config.Load()
	cfg.Mode = config.ModeMock
	cfg.RedisURL = ""
	cfg.TuningFile = ""
	return cfg
}

func TestNewPlannerMockMode(t *testing.T) {
	p, closeFn, err := NewPlanner(context.Background(), mockConfig())
	require.NoError(t, err)
	defer closeFn()

	run := p.Plan(context.Background(), domain.TripPreferences{
		Origin:      "NBO",
		Destination: "Mombasa",
		StartDate:   domain.NewDate(2025, time.December, 1),
		EndDate:     domain.NewDate(2025, time.December, 4),
		Adults:      1,
		BudgetTier:  domain.BudgetLow,
		Hobbies:     []string{"beaches"},
	})
	assert.True(t, run.Done)
	assert.Len(t, run.Plan.Itinerary, 4)
	assert.NotEmpty(t, run.Plan.Flights)
}

func TestNewPlannerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := mockConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	p, closeFn, err := NewPlanner(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, p)
	closeFn()
}

func TestNewPlannerUnreachableRedisFallsBack(t *testing.T) {
	cfg := mockConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	p, closeFn, err := NewPlanner(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, p)
	closeFn()
}

func TestNewPlannerBadTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flights: [oops"), 0o600))
	cfg := mockConfig()
	cfg.TuningFile = path

	_, _, err := NewPlanner(context.Background(), cfg)
	assert.Error(t, err)
}
