// Package http provides the HTTP server implementation for the trip planner.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/tripweaver/internal/service"
	v1 "github.com/xiaot623/tripweaver/internal/transport/http/v1"
	"github.com/xiaot623/tripweaver/internal/transport/ws"
)

// NewServer creates and configures the public HTTP server.
// It serves the v1 plan and run API and the websocket progress endpoint.
func NewServer(svc *service.Service, wsCfg ws.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	wsServer := ws.NewServer(svc, wsCfg)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	e.GET("/v1/plans/ws", wsServer.HandleWebSocket)

	return e
}
