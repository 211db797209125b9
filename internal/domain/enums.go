// Package domain defines the core domain models for the trip planner.
package domain

// BudgetTier is the traveler's spending band.
type BudgetTier string

const (
	BudgetLow  BudgetTier = "low"
	BudgetMid  BudgetTier = "mid"
	BudgetHigh BudgetTier = "high"
)

// Valid reports whether t is one of the known tiers.
func (t BudgetTier) Valid() bool {
	switch t {
	case BudgetLow, BudgetMid, BudgetHigh:
		return true
	}
	return false
}

// Provenance marks where a candidate came from.
type Provenance string

const (
	ProvenanceProvider  Provenance = "provider"
	ProvenanceCache     Provenance = "cache"
	ProvenanceGenerated Provenance = "generated"
)

// Stage names used in the run log.
const (
	StageResearch   = "research"
	StageFlights    = "flights"
	StageStays      = "stays"
	StageActivities = "activities"
	StageBudget     = "budget"
	StageItinerary  = "itinerary"
	StageComplete   = "complete"
)

// EventLevel grades a stage log entry.
type EventLevel string

const (
	LevelInfo  EventLevel = "info"
	LevelWarn  EventLevel = "warn"
	LevelError EventLevel = "error"
)

// RunStatus represents the status of a persisted plan run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusDone     RunStatus = "DONE"
	RunStatusDegraded RunStatus = "DEGRADED"
	RunStatusFailed   RunStatus = "FAILED"
)

// ProgressType is the kind of a progress event.
type ProgressType string

const (
	ProgressStage ProgressType = "progress"
	ProgressDone  ProgressType = "done"
	ProgressError ProgressType = "error"
)

// DefaultCurrency is applied whenever a price is found without a currency marker.
const DefaultCurrency = "USD"
