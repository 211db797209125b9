package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// ListRuns lists recent plan runs, newest first.
// GET /v1/runs?limit=&status=
func (h *Handler) ListRuns(c echo.Context) error {
	limit := queryInt(c, "limit", 50)
	status := domain.RunStatus(strings.ToUpper(c.QueryParam("status")))

	runs, err := h.service.ListRuns(c.Request().Context(), limit, status)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"runs": runs,
	})
}

// GetRun returns a run with its stage events.
// GET /v1/runs/:run_id
func (h *Handler) GetRun(c echo.Context) error {
	detail, err := h.service.GetRun(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// GetRunEvents retrieves events for a run.
// GET /v1/runs/:run_id/events?after_seq=&limit=
func (h *Handler) GetRunEvents(c echo.Context) error {
	runID := c.Param("run_id")
	limit := queryInt(c, "limit", 100)
	afterSeq := queryInt(c, "after_seq", 0)

	events, err := h.service.GetRunEvents(c.Request().Context(), runID, afterSeq, limit)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events":   events,
		"has_more": len(events) == limit,
	})
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
