package domain

// PlanRequest is the body of a plan request on every transport.
type PlanRequest struct {
	Preferences TripPreferences `json:"preferences"`
}

// PlanResponse is returned by the synchronous plan endpoint.
type PlanResponse struct {
	RunID  string       `json:"run_id"`
	Status RunStatus    `json:"status"`
	Plan   *TripPlan    `json:"plan"`
	Logs   []StageEvent `json:"logs"`
}

// ProgressEvent is emitted once per completed stage, then once more with the final plan.
type ProgressEvent struct {
	Type     ProgressType   `json:"type"`
	RunID    string         `json:"run_id"`
	Stage    string         `json:"stage,omitempty"`
	Level    EventLevel     `json:"level,omitempty"`
	Message  string         `json:"message,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
	Plan     *TripPlan      `json:"plan,omitempty"`
	Logs     []StageEvent   `json:"logs,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// RunDetail is a persisted run together with its stage events.
type RunDetail struct {
	Run    *PlanRun   `json:"run"`
	Events []RunEvent `json:"events"`
}
