package domain

import (
	"encoding/json"
	"time"
)

// StageEvent is one entry of a run's log trail.
type StageEvent struct {
	Stage    string         `json:"stage"`
	Level    EventLevel     `json:"level"`
	Message  string         `json:"message"`
	Counters map[string]int `json:"counters,omitempty"`
	Ts       time.Time      `json:"ts"`
}

// RunState threads preferences, the plan under construction and the log trail
// through one planning run. It is created per request and never shared between runs.
type RunState struct {
	RunID     string          `json:"run_id"`
	Prefs     TripPreferences `json:"preferences"`
	Plan      *TripPlan       `json:"plan"`
	Logs      []StageEvent    `json:"logs"`
	Artifacts map[string]any  `json:"-"`
	Done      bool            `json:"done"`
}

// NewRunState creates the state for a fresh run.
func NewRunState(runID string, prefs TripPreferences) *RunState {
	return &RunState{
		RunID:     runID,
		Prefs:     prefs.Clone(),
		Plan:      NewTripPlan(),
		Logs:      []StageEvent{},
		Artifacts: map[string]any{},
	}
}

// Log appends an entry. Entries are never removed or reordered.
func (r *RunState) Log(ev StageEvent) {
	if ev.Ts.IsZero() {
		ev.Ts = time.Now()
	}
	if ev.Level == "" {
		ev.Level = LevelInfo
	}
	r.Logs = append(r.Logs, ev)
}

// Logf is a shorthand for Log with a formatted message and no counters.
func (r *RunState) Logf(stage string, level EventLevel, counters map[string]int, msg string) {
	r.Log(StageEvent{Stage: stage, Level: level, Message: msg, Counters: counters})
}

// Snapshot returns an isolated copy carrying the preferences and the source index.
// Everything else starts empty so a branch can only contribute its own slice.
func (r *RunState) Snapshot() *RunState {
	snap := NewRunState(r.RunID, r.Prefs)
	for url, ref := range r.Plan.Sources {
		snap.Plan.Sources[url] = ref
	}
	return snap
}

// HasErrors reports whether any log entry is error-tagged.
func (r *RunState) HasErrors() bool {
	for _, ev := range r.Logs {
		if ev.Level == LevelError {
			return true
		}
	}
	return false
}

// PlanRun is the persisted audit row for one plan request.
type PlanRun struct {
	RunID       string          `json:"run_id"`
	Status      RunStatus       `json:"status"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	Plan        json.RawMessage `json:"plan,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
}

// RunEvent is a persisted stage event.
type RunEvent struct {
	EventID  string         `json:"event_id"`
	RunID    string         `json:"run_id"`
	Seq      int            `json:"seq"`
	Ts       int64          `json:"ts"` // Unix milliseconds
	Stage    string         `json:"stage"`
	Level    EventLevel     `json:"level"`
	Message  string         `json:"message"`
	Counters map[string]int `json:"counters,omitempty"`
}
