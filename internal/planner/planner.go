// Package planner runs the trip planning pipeline: research, a parallel
// fan-out of the flight, stay and activity agents over isolated snapshots,
// a fixed-order merge, then budget and itinerary.
package planner

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/adapter/llm"
	"github.com/xiaot623/tripweaver/internal/adapter/places"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/config"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/policy"
)

// PolicyEvaluator decides whether a candidate may enter the plan.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, input policy.Input) (string, string, error)
}

// Observer receives progress events. It is called from the orchestrating
// goroutine only, never concurrently.
type Observer func(domain.ProgressEvent)

// Planner assembles trip plans.
type Planner struct {
	search    search.Provider
	generator llm.Generator
	places    places.Provider
	cache     cache.Cache
	policy    PolicyEvaluator
	tracer    trace.Tracer
	tuning    config.Tuning
	now       func() time.Time

	branches []branch

	// pending tracks fire-and-forget cache writes.
	pending sync.WaitGroup
}

// Option configures a Planner.
type Option func(*Planner)

// WithSearch sets the web search provider.
func WithSearch(p search.Provider) Option { return func(pl *Planner) { pl.search = p } }

// WithGenerator sets the generative fallback.
func WithGenerator(g llm.Generator) Option { return func(pl *Planner) { pl.generator = g } }

// WithPlaces sets the points-of-interest provider.
func WithPlaces(p places.Provider) Option { return func(pl *Planner) { pl.places = p } }

// WithCache sets the result cache.
func WithCache(c cache.Cache) Option { return func(pl *Planner) { pl.cache = c } }

// WithPolicy enables candidate filtering.
func WithPolicy(e PolicyEvaluator) Option { return func(pl *Planner) { pl.policy = e } }

// WithTracer overrides the tracer used for stage spans.
func WithTracer(t trace.Tracer) Option { return func(pl *Planner) { pl.tracer = t } }

// WithTuning replaces the default tuning.
func WithTuning(t config.Tuning) Option { return func(pl *Planner) { pl.tuning = t } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(pl *Planner) { pl.now = now } }

// New creates a Planner. Providers that are not configured behave as unavailable.
func New(opts ...Option) *Planner {
	p := &Planner{
		cache:  cache.Noop{},
		tracer: otel.Tracer("github.com/xiaot623/tripweaver/internal/planner"),
		tuning: config.DefaultTuning(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.branches = []branch{
		{name: domain.StageFlights, run: p.flightAgent},
		{name: domain.StageStays, run: p.stayAgent},
		{name: domain.StageActivities, run: p.activityAgent},
	}
	return p
}

// Plan runs the pipeline and returns the final state. It never returns an
// error: failures are recorded in the state's log trail.
func (p *Planner) Plan(ctx context.Context, prefs domain.TripPreferences) *domain.RunState {
	return p.Run(ctx, NewRunID(), prefs, nil)
}

// Run is Plan with an explicit run ID and an optional observer that receives
// one event per completed stage and a final done event.
func (p *Planner) Run(ctx context.Context, runID string, prefs domain.TripPreferences, observe Observer) *domain.RunState {
	if observe == nil {
		observe = func(domain.ProgressEvent) {}
	}
	started := p.now()
	run := domain.NewRunState(runID, prefs)

	ctx, span := p.tracer.Start(ctx, "planner.run")
	defer span.End()

	emit := func(stage string) {
		ev := domain.ProgressEvent{Type: domain.ProgressStage, RunID: runID, Stage: stage}
		if last := lastFor(run.Logs, stage); last != nil {
			ev.Level = last.Level
			ev.Message = last.Message
			ev.Counters = last.Counters
		}
		observe(ev)
	}

	p.safeStage(ctx, run, domain.StageResearch, p.researchDestination)
	emit(domain.StageResearch)

	results := p.fanOut(ctx, run)
	for _, res := range results {
		p.merge(run, res)
		emit(res.name)
	}

	p.safeStage(ctx, run, domain.StageBudget, func(ctx context.Context, run *domain.RunState) {
		run.Plan.Budget = EstimateBudget(run.Plan, run.Prefs)
		run.Logf(domain.StageBudget, domain.LevelInfo, nil, "budget estimated")
	})
	emit(domain.StageBudget)

	p.safeStage(ctx, run, domain.StageItinerary, func(ctx context.Context, run *domain.RunState) {
		run.Plan.Itinerary = BuildItinerary(run.Prefs, run.Plan.Activities, p.tuning.ExcludeTravelDays)
		placed := 0
		for _, d := range run.Plan.Itinerary {
			placed += len(d.Placed())
		}
		run.Logf(domain.StageItinerary, domain.LevelInfo,
			map[string]int{"days": len(run.Plan.Itinerary), "placed": placed}, "itinerary built")
	})
	emit(domain.StageItinerary)

	p.finish(run, started)
	emit(domain.StageComplete)

	p.writeBack(run)

	observe(domain.ProgressEvent{
		Type:  domain.ProgressDone,
		RunID: runID,
		Stage: domain.StageComplete,
		Plan:  run.Plan,
		Logs:  run.Logs,
	})
	return run
}

// Wait blocks until pending cache write-backs have finished.
func (p *Planner) Wait() {
	p.pending.Wait()
}

// finish makes the plan structurally complete and appends the terminal entry.
func (p *Planner) finish(run *domain.RunState, started time.Time) {
	run.Plan.EnsureComplete()
	if len(run.Plan.Itinerary) != run.Prefs.Days() {
		run.Plan.Itinerary = domain.EmptyItinerary(run.Prefs)
	}
	latency := p.now().Sub(started)
	counters := map[string]int{
		"flights":    len(run.Plan.Flights),
		"stays":      len(run.Plan.Stays),
		"activities": len(run.Plan.Activities),
		"days":       len(run.Plan.Itinerary),
		"latency_ms": int(latency.Milliseconds()),
	}
	if run.HasErrors() {
		run.Logf(domain.StageComplete, domain.LevelError, counters, "plan completed with errors")
	} else {
		run.Logf(domain.StageComplete, domain.LevelInfo, counters, "plan complete")
	}
	run.Done = true
	log.Printf("INFO: run %s complete: flights=%d stays=%d activities=%d latency=%s",
		run.RunID, counters["flights"], counters["stays"], counters["activities"], latency)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "run_" + uuid.New().String()[:8]
}

func lastFor(logs []domain.StageEvent, stage string) *domain.StageEvent {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Stage == stage {
			return &logs[i]
		}
	}
	return nil
}
