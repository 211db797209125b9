package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripweaver/internal/adapter/llm"
	"github.com/xiaot623/tripweaver/internal/adapter/places"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/planner"
	"github.com/xiaot623/tripweaver/tests/helpers"
)

func validPrefs() domain.TripPreferences {
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

func mockPlanner() *planner.Planner {
	return planner.New(
		planner.WithSearch(search.NewMockProvider()),
		planner.WithPlaces(places.NewMockProvider()),
		planner.WithGenerator(llm.NewChatGenerator(llm.NewMockClient(), "mock")),
	)
}

type panickyPlanner struct{}

func (panickyPlanner) Run(context.Context, string, domain.TripPreferences, planner.Observer) *domain.RunState {
	panic("corrupted state")
}

func TestValidatePreferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TripPreferences)
		ok     bool
	}{
		{"valid", func(*domain.TripPreferences) {}, true},
		{"missing origin", func(p *domain.TripPreferences) { p.Origin = "  " }, false},
		{"missing destination", func(p *domain.TripPreferences) { p.Destination = "" }, false},
		{"end before start", func(p *domain.TripPreferences) { p.EndDate = p.StartDate.AddDays(-1) }, false},
		{"same day", func(p *domain.TripPreferences) { p.EndDate = p.StartDate }, false},
		{"too long", func(p *domain.TripPreferences) { p.EndDate = p.StartDate.AddDays(MaxTripDays) }, false},
		{"longest allowed", func(p *domain.TripPreferences) { p.EndDate = p.StartDate.AddDays(MaxTripDays - 1) }, true},
		{"negative adults", func(p *domain.TripPreferences) { p.Adults = -1 }, false},
		{"adults defaulted", func(p *domain.TripPreferences) { p.Adults = 0 }, true},
		{"bad tier", func(p *domain.TripPreferences) { p.BudgetTier = "lavish" }, false},
		{"tier defaulted", func(p *domain.TripPreferences) { p.BudgetTier = "" }, true},
		{"tier case", func(p *domain.TripPreferences) { p.BudgetTier = "HIGH" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := validPrefs()
			tt.mutate(&prefs)
			err := ValidatePreferences(NormalizePreferences(prefs))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPreferences)
			}
		})
	}
}

func TestPlanTrip_PersistsRunAndEvents(t *testing.T) {
	ctx := context.Background()
	st := helpers.NewTestSQLiteStore(t)
	svc := New(st, mockPlanner())

	resp, err := svc.PlanTrip(ctx, validPrefs())
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusDone, resp.Status)
	assert.Len(t, resp.Plan.Itinerary, 7)

	detail, err := svc.GetRun(ctx, resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusDone, detail.Run.Status)
	assert.NotNil(t, detail.Run.EndedAt)
	assert.Equal(t, "Dubai", detail.Run.Destination)
	assert.NotEmpty(t, detail.Run.Plan)
	require.Len(t, detail.Events, len(resp.Logs))
	assert.Equal(t, 1, detail.Events[0].Seq)
	assert.Equal(t, domain.StageComplete, detail.Events[len(detail.Events)-1].Stage)

	events, err := svc.GetRunEvents(ctx, resp.RunID, len(resp.Logs)-1, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.StageComplete, events[0].Stage)

	runs, err := svc.ListRuns(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, resp.RunID, runs[0].RunID)
}

func TestPlanTrip_InvalidRequestIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	st := helpers.NewTestSQLiteStore(t)
	svc := New(st, mockPlanner())

	prefs := validPrefs()
	prefs.Destination = ""
	_, err := svc.PlanTrip(ctx, prefs)
	assert.ErrorIs(t, err, ErrInvalidPreferences)

	runs, err := svc.ListRuns(ctx, 10, "")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPlanTrip_PlannerPanicMarksRunFailed(t *testing.T) {
	ctx := context.Background()
	st := helpers.NewTestSQLiteStore(t)
	svc := New(st, panickyPlanner{})

	_, err := svc.PlanTrip(ctx, validPrefs())
	require.Error(t, err)

	runs, err := svc.ListRuns(ctx, 10, domain.RunStatusFailed)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "corrupted state")
}

func TestStreamPlan_ForwardsProgress(t *testing.T) {
	svc := New(helpers.NewTestSQLiteStore(t), mockPlanner())

	var events []domain.ProgressEvent
	resp, err := svc.StreamPlan(context.Background(), validPrefs(), func(ev domain.ProgressEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.StageResearch, events[0].Stage)
	last := events[len(events)-1]
	assert.Equal(t, domain.ProgressDone, last.Type)
	assert.Equal(t, resp.RunID, last.RunID)
}

func TestGetRun_NotFound(t *testing.T) {
	svc := New(helpers.NewTestSQLiteStore(t), mockPlanner())

	_, err := svc.GetRun(context.Background(), "run_missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = svc.GetRunEvents(context.Background(), "run_missing", 0, 10)
	assert.ErrorIs(t, err, ErrRunNotFound)
}
