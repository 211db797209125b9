// Package rpc exposes the planner to internal callers over JSON-RPC.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/service"
)

// ServiceName is the name the handler is registered under.
const ServiceName = "Planner"

// Server exposes internal RPC endpoints.
type Server struct {
	mu        sync.Mutex
	listener  net.Listener
	rpcServer *rpc.Server
	done      chan struct{}
}

// NewServer creates a new RPC server bound to the planning service.
func NewServer(svc *service.Service) (*Server, error) {
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName(ServiceName, handler); err != nil {
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			log.Printf("WARN: RPC accept error: %v", err)
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	if err := ln.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetRunRequest identifies a persisted run.
type GetRunRequest struct {
	RunID string `json:"run_id"`
}

// Handler implements planner RPC methods.
type Handler struct {
	service *service.Service
}

// Plan runs the planner synchronously.
func (h *Handler) Plan(req *domain.PlanRequest, resp *domain.PlanResponse) error {
	if req == nil {
		return errors.New("plan request is required")
	}

	result, err := h.service.PlanTrip(context.Background(), req.Preferences)
	if err != nil {
		return err
	}
	if resp != nil && result != nil {
		*resp = *result
	}
	return nil
}

// GetRun returns a persisted run with its events.
func (h *Handler) GetRun(req *GetRunRequest, resp *domain.RunDetail) error {
	if req == nil || req.RunID == "" {
		return errors.New("run_id is required")
	}

	detail, err := h.service.GetRun(context.Background(), req.RunID)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = *detail
	}
	return nil
}
