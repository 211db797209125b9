package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// branch is one agent of the parallel fan-out. run writes only to the
// snapshot it is given.
type branch struct {
	name string
	run  func(ctx context.Context, snap *domain.RunState)
}

type outcome string

const (
	outcomeOK      outcome = "ok"
	outcomeTimeout outcome = "timeout"
	outcomeError   outcome = "error"
)

type branchResult struct {
	name    string
	outcome outcome
	err     error
	snap    *domain.RunState
}

// fanOut runs every branch on its own snapshot and returns the results in
// branch order, regardless of completion order.
func (p *Planner) fanOut(ctx context.Context, run *domain.RunState) []branchResult {
	results := make([]branchResult, len(p.branches))
	var wg sync.WaitGroup
	for i, b := range p.branches {
		snap := run.Snapshot()
		wg.Add(1)
		go func(i int, b branch) {
			defer wg.Done()
			results[i] = p.runBranch(ctx, b, snap)
		}(i, b)
	}
	wg.Wait()
	return results
}

// runBranch time-boxes one branch. The branch goroutine may outlive the
// timeout; its snapshot is then discarded and never read again.
func (p *Planner) runBranch(ctx context.Context, b branch, snap *domain.RunState) branchResult {
	ctx, span := p.tracer.Start(ctx, "planner.branch."+b.name)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.tuning.BranchTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ERROR: branch %s panicked: %v\n%s", b.name, r, debug.Stack())
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		b.run(ctx, snap)
		done <- nil
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
	}
	// a branch that returned after its deadline only holds partial results
	if ctxErr := ctx.Err(); ctxErr != nil {
		span.RecordError(ctxErr)
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return branchResult{name: b.name, outcome: outcomeTimeout, err: ctxErr}
		}
		return branchResult{name: b.name, outcome: outcomeError, err: ctxErr}
	}
	if err != nil {
		span.RecordError(err)
		return branchResult{name: b.name, outcome: outcomeError, err: err}
	}
	return branchResult{name: b.name, outcome: outcomeOK, snap: snap}
}

// merge folds one branch result into the live run. Failed branches
// contribute an empty slice for their category and a single log entry.
func (p *Planner) merge(run *domain.RunState, res branchResult) {
	switch res.outcome {
	case outcomeOK:
		switch res.name {
		case domain.StageFlights:
			run.Plan.Flights = res.snap.Plan.Flights
		case domain.StageStays:
			run.Plan.Stays = res.snap.Plan.Stays
		case domain.StageActivities:
			run.Plan.Activities = res.snap.Plan.Activities
			run.Plan.Itinerary = res.snap.Plan.Itinerary
		}
		for url, ref := range res.snap.Plan.Sources {
			if _, ok := run.Plan.Sources[url]; !ok {
				run.Plan.Sources[url] = ref
			}
		}
		for k, v := range res.snap.Artifacts {
			run.Artifacts[k] = v
		}
		for _, ev := range res.snap.Logs {
			run.Log(ev)
		}
		return
	case outcomeTimeout:
		log.Printf("WARN: run %s: %s branch timed out after %s", run.RunID, res.name, p.tuning.BranchTimeout)
		run.Logf(res.name, domain.LevelWarn, map[string]int{"items": 0},
			fmt.Sprintf("%s branch timed out after %s, continuing without results", res.name, p.tuning.BranchTimeout))
	default:
		log.Printf("ERROR: run %s: %s branch failed: %v", run.RunID, res.name, res.err)
		run.Logf(res.name, domain.LevelError, map[string]int{"items": 0},
			fmt.Sprintf("%s branch failed: %v", res.name, res.err))
	}

	switch res.name {
	case domain.StageFlights:
		run.Plan.Flights = []domain.FlightOption{}
	case domain.StageStays:
		run.Plan.Stays = []domain.StayOption{}
	case domain.StageActivities:
		run.Plan.Activities = []domain.Activity{}
		run.Plan.Itinerary = domain.EmptyItinerary(run.Prefs)
	}
}

// safeStage runs a synchronous stage on the live state. A panic becomes an
// error-tagged log entry and the run continues with whatever the plan holds.
func (p *Planner) safeStage(ctx context.Context, run *domain.RunState, stage string, fn func(context.Context, *domain.RunState)) {
	ctx, span := p.tracer.Start(ctx, "planner.stage."+stage)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: run %s: %s stage panicked: %v\n%s", run.RunID, stage, r, debug.Stack())
			span.RecordError(fmt.Errorf("panic: %v", r))
			run.Logf(stage, domain.LevelError, nil, fmt.Sprintf("%s stage failed: %v", stage, r))
		}
	}()
	fn(ctx, run)
}
