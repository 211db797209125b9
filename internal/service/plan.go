package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/planner"
)

// PlanTrip validates the request, runs the planner and records the run.
// Persistence failures are logged and never block the plan.
func (s *Service) PlanTrip(ctx context.Context, prefs domain.TripPreferences) (*domain.PlanResponse, error) {
	return s.StreamPlan(ctx, prefs, nil)
}

// StreamPlan is PlanTrip with progress events forwarded to emit as stages complete.
func (s *Service) StreamPlan(ctx context.Context, prefs domain.TripPreferences, emit func(domain.ProgressEvent)) (*domain.PlanResponse, error) {
	prefs = NormalizePreferences(prefs)
	if err := ValidatePreferences(prefs); err != nil {
		return nil, err
	}

	runID := planner.NewRunID()
	startedAt := time.Now()
	s.recordStart(ctx, runID, prefs, startedAt)

	state, err := s.runPlanner(ctx, runID, prefs, emit)
	if err != nil {
		s.recordFinish(ctx, runID, domain.RunStatusFailed, nil, err.Error())
		return nil, err
	}

	status := domain.RunStatusDone
	errMsg := ""
	if state.HasErrors() {
		status = domain.RunStatusDegraded
		errMsg = firstError(state.Logs)
	}
	s.recordFinish(ctx, runID, status, state, errMsg)

	log.Printf("INFO: run %s finished with status %s", runID, status)
	return &domain.PlanResponse{
		RunID:  runID,
		Status: status,
		Plan:   state.Plan,
		Logs:   state.Logs,
	}, nil
}

// runPlanner shields callers from a planner panic.
func (s *Service) runPlanner(ctx context.Context, runID string, prefs domain.TripPreferences, emit func(domain.ProgressEvent)) (state *domain.RunState, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: run %s: planner panicked: %v\n%s", runID, r, debug.Stack())
			state = nil
			err = fmt.Errorf("planner failed: %v", r)
		}
	}()
	var observe planner.Observer
	if emit != nil {
		observe = planner.Observer(emit)
	}
	return s.planner.Run(ctx, runID, prefs, observe), nil
}

func (s *Service) recordStart(ctx context.Context, runID string, prefs domain.TripPreferences, startedAt time.Time) {
	if s.store == nil {
		return
	}
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		log.Printf("WARN: run %s: failed to encode preferences: %v", runID, err)
	}
	run := &domain.PlanRun{
		RunID:       runID,
		Status:      domain.RunStatusRunning,
		Origin:      prefs.Origin,
		Destination: prefs.Destination,
		StartDate:   prefs.StartDate.String(),
		EndDate:     prefs.EndDate.String(),
		Preferences: prefsJSON,
		StartedAt:   startedAt,
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		log.Printf("ERROR: run %s: failed to save run: %v", runID, err)
	}
}

// recordFinish stores the log trail and the final plan. It uses a context
// that outlives a cancelled request so the audit row is not left RUNNING.
func (s *Service) recordFinish(ctx context.Context, runID string, status domain.RunStatus, state *domain.RunState, errMsg string) {
	if s.store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var planJSON []byte
	if state != nil {
		for i, ev := range state.Logs {
			if err := s.store.CreateEvent(ctx, toRunEvent(runID, i+1, ev)); err != nil {
				log.Printf("ERROR: run %s: failed to save event %d: %v", runID, i+1, err)
			}
		}
		data, err := json.Marshal(state.Plan)
		if err != nil {
			log.Printf("WARN: run %s: failed to encode plan: %v", runID, err)
		}
		planJSON = data
	}
	if err := s.store.CompleteRun(ctx, runID, status, planJSON, errMsg, time.Now()); err != nil {
		log.Printf("ERROR: run %s: failed to complete run: %v", runID, err)
	}
}

func toRunEvent(runID string, seq int, ev domain.StageEvent) *domain.RunEvent {
	return &domain.RunEvent{
		EventID:  "evt_" + uuid.New().String()[:8],
		RunID:    runID,
		Seq:      seq,
		Ts:       ev.Ts.UnixMilli(),
		Stage:    ev.Stage,
		Level:    ev.Level,
		Message:  ev.Message,
		Counters: ev.Counters,
	}
}

func firstError(logs []domain.StageEvent) string {
	for _, ev := range logs {
		if ev.Level == domain.LevelError {
			return ev.Stage + ": " + ev.Message
		}
	}
	return ""
}
