package v1

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripweaver/internal/adapter/llm"
	"github.com/xiaot623/tripweaver/internal/adapter/places"
	"github.com/xiaot623/tripweaver/internal/adapter/search"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/planner"
	"github.com/xiaot623/tripweaver/internal/service"
	"github.com/xiaot623/tripweaver/tests/helpers"
)

const dubaiBody = `{"preferences":{"origin":"NBO","destination":"Dubai","start_date":"2025-11-10",` +
	`"end_date":"2025-11-16","adults":2,"budget_tier":"mid","hobbies":["golf","fine dining"]}}`

func newTestHandler(t *testing.T) (*Handler, *service.Service) {
	p := planner.New(
		planner.WithSearch(search.NewMockProvider()),
		planner.WithPlaces(places.NewMockProvider()),
		planner.WithGenerator(llm.NewChatGenerator(llm.NewMockClient(), "mock")),
	)
	svc := service.New(helpers.NewTestSQLiteStore(t), p)
	return NewHandler(svc), svc
}

func newContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)
	c, rec := newContext(e, http.MethodGet, "/health", "")

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestCreatePlan(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)
	c, rec := newContext(e, http.MethodPost, "/v1/plans", dubaiBody)

	require.NoError(t, h.CreatePlan(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, domain.RunStatusDone, resp.Status)
	assert.Len(t, resp.Plan.Itinerary, 7)
	assert.NotEmpty(t, resp.Logs)
}

func TestCreatePlanValidation(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"preferences":`},
		{"missing destination", `{"preferences":{"origin":"NBO","start_date":"2025-11-10","end_date":"2025-11-12"}}`},
		{"end before start", `{"preferences":{"origin":"NBO","destination":"Dubai","start_date":"2025-11-10","end_date":"2025-11-09"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(e, http.MethodPost, "/v1/plans", tt.body)
			require.NoError(t, h.CreatePlan(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestStreamPlan(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)
	c, rec := newContext(e, http.MethodPost, "/v1/plans/stream", dubaiBody)

	require.NoError(t, h.StreamPlan(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var names []string
	var last domain.ProgressEvent
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			names = append(names, strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last))
		}
	}
	require.NotEmpty(t, names)
	assert.Equal(t, "progress", names[0])
	assert.Equal(t, "done", names[len(names)-1])
	assert.Equal(t, domain.ProgressDone, last.Type)
	require.NotNil(t, last.Plan)
	assert.Len(t, last.Plan.Itinerary, 7)
}

func TestStreamPlanValidationIsPlainJSON(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)
	c, rec := newContext(e, http.MethodPost, "/v1/plans/stream", `{"preferences":{"origin":"NBO"}}`)

	require.NoError(t, h.StreamPlan(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEqual(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestRunQueries(t *testing.T) {
	e := echo.New()
	h, svc := newTestHandler(t)

	var prefs domain.PlanRequest
	require.NoError(t, json.Unmarshal([]byte(dubaiBody), &prefs))
	planned, err := svc.PlanTrip(context.Background(), prefs.Preferences)
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/v1/runs?status=done", "")
		require.NoError(t, h.ListRuns(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Runs []domain.PlanRun `json:"runs"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Runs, 1)
		assert.Equal(t, planned.RunID, body.Runs[0].RunID)
	})

	t.Run("get", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/", "")
		c.SetPath("/v1/runs/:run_id")
		c.SetParamNames("run_id")
		c.SetParamValues(planned.RunID)
		require.NoError(t, h.GetRun(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var detail domain.RunDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, domain.RunStatusDone, detail.Run.Status)
		assert.Len(t, detail.Events, len(planned.Logs))
	})

	t.Run("events after seq", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/?after_seq=2&limit=3", "")
		c.SetParamNames("run_id")
		c.SetParamValues(planned.RunID)
		require.NoError(t, h.GetRunEvents(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Events []domain.RunEvent `json:"events"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.Events)
		assert.Equal(t, 3, body.Events[0].Seq)
	})

	t.Run("unknown run", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/", "")
		c.SetParamNames("run_id")
		c.SetParamValues("run_missing")
		require.NoError(t, h.GetRun(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
