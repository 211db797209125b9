package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc/jsonrpc"
	"net/url"
	"strings"
	"time"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// Client calls the planner RPC service. Each call uses its own connection.
type Client struct {
	addr        string
	dialTimeout time.Duration
	callTimeout time.Duration
}

// NewClient creates a client for addr, which may be host:port or a tcp:// URL.
func NewClient(addr string) *Client {
	return &Client{
		addr:        resolveRPCAddr(addr),
		dialTimeout: 5 * time.Second,
		callTimeout: 2 * time.Minute,
	}
}

// Plan asks the server to plan a trip.
func (c *Client) Plan(ctx context.Context, prefs domain.TripPreferences) (*domain.PlanResponse, error) {
	var resp domain.PlanResponse
	if err := c.call(ctx, ServiceName+".Plan", &domain.PlanRequest{Preferences: prefs}, &resp); err != nil {
		return nil, fmt.Errorf("failed to plan over rpc: %w", err)
	}
	return &resp, nil
}

// GetRun fetches a persisted run with its events.
func (c *Client) GetRun(ctx context.Context, runID string) (*domain.RunDetail, error) {
	var resp domain.RunDetail
	if err := c.call(ctx, ServiceName+".GetRun", &GetRunRequest{RunID: runID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get run over rpc: %w", err)
	}
	return &resp, nil
}

func (c *Client) call(ctx context.Context, method string, args, reply interface{}) error {
	if c.addr == "" {
		return errors.New("rpc address is empty")
	}
	conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if c.callTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.callTimeout))
	}

	client := jsonrpc.NewClient(conn)
	call := client.Go(method, args, reply, nil)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-call.Done:
		return call.Error
	}
}

func resolveRPCAddr(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err == nil && parsed.Host != "" {
			return parsed.Host
		}
	}
	return raw
}
