package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("BRANCH_TIMEOUT_MS", "")
	t.Setenv(EnvMode, "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.BranchTimeout)
	assert.False(t, cfg.MockMode())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BRANCH_TIMEOUT_MS", "1500")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv(EnvMode, "mock")

	cfg := Load()
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 1500*time.Millisecond, cfg.BranchTimeout)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.TracingEnabled)
	assert.True(t, cfg.MockMode())
}

func TestLoadFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("SEARCH_QPS", "fast")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 2.0, cfg.SearchQPS)
}

func TestLoadTuningEmptyPath(t *testing.T) {
	tuning, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tuning)
}

func TestLoadTuningOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := `
activities:
  min: 6
  max: 2
branch_timeout: 5s
exclude_travel_days: false
dedupe_key: title_location
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 6, tuning.Activities.Min)
	assert.Equal(t, 6, tuning.Activities.Max)
	assert.Equal(t, 3, tuning.Flights.Min)
	assert.Equal(t, 5*time.Second, tuning.BranchTimeout)
	assert.False(t, tuning.ExcludeTravelDays)
	assert.Equal(t, DedupeByTitleLocation, tuning.DedupeKey)
}

func TestLoadTuningUnknownDedupeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dedupe_key: fuzzy\n"), 0o600))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, DedupeByTitle, tuning.DedupeKey)
}

func TestLoadTuningMissingFile(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPlannerTuningEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("branch_timeout: 5s\n"), 0o600))

	t.Setenv("TUNING_FILE", path)
	t.Setenv("BRANCH_TIMEOUT_MS", "")
	tuning, err := Load().PlannerTuning()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, tuning.BranchTimeout)

	t.Setenv("BRANCH_TIMEOUT_MS", "750")
	tuning, err = Load().PlannerTuning()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, tuning.BranchTimeout)
}
