package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Dedupe key modes for the activity catalog.
const (
	DedupeByTitle         = "title"
	DedupeByTitleLocation = "title_location"
)

// AgentTuning bounds how many candidates one agent collects.
type AgentTuning struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Tuning holds planner knobs that are easier to keep in a file than in env vars.
type Tuning struct {
	Flights           AgentTuning   `yaml:"flights"`
	Stays             AgentTuning   `yaml:"stays"`
	Activities        AgentTuning   `yaml:"activities"`
	BranchTimeout     time.Duration `yaml:"branch_timeout"`
	ExcludeTravelDays bool          `yaml:"exclude_travel_days"`
	DedupeKey         string        `yaml:"dedupe_key"`
	PolicyEnabled     bool          `yaml:"policy_enabled"`
	CacheWriteTimeout time.Duration `yaml:"cache_write_timeout"`
}

// DefaultTuning returns the built-in planner tuning.
func DefaultTuning() Tuning {
	return Tuning{
		Flights:           AgentTuning{Min: 3, Max: 8},
		Stays:             AgentTuning{Min: 3, Max: 10},
		Activities:        AgentTuning{Min: 4, Max: 20},
		BranchTimeout:     30 * time.Second,
		ExcludeTravelDays: true,
		DedupeKey:         DedupeByTitle,
		PolicyEnabled:     true,
		CacheWriteTimeout: 5 * time.Second,
	}
}

// LoadTuning overlays the YAML file at path onto the defaults.
// An empty path returns the defaults unchanged.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	return t.normalized(), nil
}

// PlannerTuning loads the tuning file named by TUNING_FILE.
// An explicit BRANCH_TIMEOUT_MS wins over the file.
func (c *Config) PlannerTuning() (Tuning, error) {
	t, err := LoadTuning(c.TuningFile)
	if err != nil {
		return t, err
	}
	if c.branchTimeoutSet && c.BranchTimeout > 0 {
		t.BranchTimeout = c.BranchTimeout
	}
	return t, nil
}

func (t Tuning) normalized() Tuning {
	def := DefaultTuning()
	for _, pair := range []struct{ got, def *AgentTuning }{
		{&t.Flights, &def.Flights},
		{&t.Stays, &def.Stays},
		{&t.Activities, &def.Activities},
	} {
		if pair.got.Min <= 0 {
			pair.got.Min = pair.def.Min
		}
		if pair.got.Max < pair.got.Min {
			pair.got.Max = pair.got.Min
		}
	}
	if t.BranchTimeout <= 0 {
		t.BranchTimeout = def.BranchTimeout
	}
	if t.CacheWriteTimeout <= 0 {
		t.CacheWriteTimeout = def.CacheWriteTimeout
	}
	if t.DedupeKey != DedupeByTitleLocation {
		t.DedupeKey = DedupeByTitle
	}
	return t
}
