package v1

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// CreatePlan runs the planner synchronously and returns the finished plan.
// POST /v1/plans
func (h *Handler) CreatePlan(c echo.Context) error {
	var req domain.PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.PlanTrip(c.Request().Context(), req.Preferences)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// StreamPlan runs the planner and streams progress as server-sent events.
// Validation errors are returned as plain JSON since no event has been written yet.
// POST /v1/plans/stream
func (h *Handler) StreamPlan(c echo.Context) error {
	var req domain.PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	res := c.Response()
	started := false
	emit := func(ev domain.ProgressEvent) {
		if !started {
			res.Header().Set(echo.HeaderContentType, "text/event-stream")
			res.Header().Set("Cache-Control", "no-cache")
			res.Header().Set("Connection", "keep-alive")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		if err := writeEvent(res, ev); err != nil {
			log.Printf("WARN: failed to write stream event for run %s: %v", ev.RunID, err)
		}
	}

	_, err := h.service.StreamPlan(c.Request().Context(), req.Preferences, emit)
	if err == nil {
		return nil
	}
	if !started {
		return errorJSON(c, err)
	}
	return writeEvent(res, domain.ProgressEvent{Type: domain.ProgressError, Error: err.Error()})
}

// writeEvent writes one SSE frame named after the event type and flushes it.
func writeEvent(res *echo.Response, ev domain.ProgressEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
