package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/transport/ws"
)

// planRemote sends a plan request over the server websocket and relays progress
// until the done or error event arrives.
func planRemote(ctx context.Context, addr string, prefs domain.TripPreferences, onEvent func(domain.ProgressEvent)) (*domain.PlanResponse, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop on Ctrl+C.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	req := ws.PlanRequestMessage{
		Type:        ws.TypePlanRequest,
		RequestID:   fmt.Sprintf("req_%d", time.Now().UnixNano()),
		Preferences: prefs,
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("write plan_request: %w", err)
	}

	for {
		var ev domain.ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read: %w", err)
		}
		onEvent(ev)

		switch ev.Type {
		case domain.ProgressError:
			return nil, errors.New(ev.Error)
		case domain.ProgressDone:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return &domain.PlanResponse{
				RunID:  ev.RunID,
				Status: statusOf(ev.Logs),
				Plan:   ev.Plan,
				Logs:   ev.Logs,
			}, nil
		}
	}
}

// statusOf derives the run status the server records from the log trail.
func statusOf(logs []domain.StageEvent) domain.RunStatus {
	for _, ev := range logs {
		if ev.Level == domain.LevelError {
			return domain.RunStatusDegraded
		}
	}
	return domain.RunStatusDone
}
