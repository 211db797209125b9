// Package ws serves plan requests over a websocket and pushes stage progress back.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/service"
)

// Message types sent by clients.
const (
	TypePlanRequest = "plan_request"
)

// PlanRequestMessage asks the server to plan a trip on this connection.
type PlanRequestMessage struct {
	Type        string                 `json:"type"`
	RequestID   string                 `json:"request_id,omitempty"`
	Preferences domain.TripPreferences `json:"preferences"`
}

// Config holds connection timing limits.
type Config struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns the connection limits used by the server binary.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Server handles WebSocket connections.
type Server struct {
	cfg      Config
	service  *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(svc *service.Service, cfg Config) *Server {
	return &Server{
		cfg:     cfg,
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// connection is one client socket. Writes go through send and are drained by writePump.
type connection struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
		c.conn.Close()
	})
}

// push queues a message for the writer. It drops the message once the connection is gone.
func (c *connection) push(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR: failed to marshal websocket message: %v", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WARN: failed to upgrade websocket: %v", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		id:     "conn_" + uuid.New().String()[:8],
		conn:   ws,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *connection) {
	defer conn.close()

	conn.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.conn.SetPongHandler(func(string) error {
		conn.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARN: websocket %s read error: %v", conn.id, err)
			}
			return
		}
		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.close()
	}()

	for {
		select {
		case message := <-conn.send:
			conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WARN: websocket %s write failed: %v", conn.id, err)
				return
			}

		case <-ticker.C:
			conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-conn.done:
			return
		}
	}
}

// handleMessage dispatches incoming messages.
func (s *Server) handleMessage(conn *connection, data []byte) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", "invalid JSON message")
		return
	}

	switch base.Type {
	case TypePlanRequest:
		s.handlePlanRequest(conn, data)
	default:
		s.sendError(conn, "", "unknown message type: "+base.Type)
	}
}

// handlePlanRequest runs a plan in the background and streams its progress.
// The run is cancelled when the client disconnects.
func (s *Server) handlePlanRequest(conn *connection, data []byte) {
	var msg PlanRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", "invalid plan_request message")
		return
	}

	go func() {
		resp, err := s.service.StreamPlan(conn.ctx, msg.Preferences, func(ev domain.ProgressEvent) {
			conn.push(ev)
		})
		if err != nil {
			log.Printf("WARN: websocket %s plan failed: %v", conn.id, err)
			s.sendError(conn, "", err.Error())
			return
		}
		log.Printf("INFO: websocket %s delivered run %s", conn.id, resp.RunID)
	}()
}

// sendError sends an error event to a connection.
func (s *Server) sendError(conn *connection, runID, message string) {
	conn.push(domain.ProgressEvent{
		Type:  domain.ProgressError,
		RunID: runID,
		Error: message,
	})
}
