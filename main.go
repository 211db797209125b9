package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/tripweaver/internal/app"
	"github.com/xiaot623/tripweaver/internal/config"
	"github.com/xiaot623/tripweaver/internal/repository"
	"github.com/xiaot623/tripweaver/internal/service"
	"github.com/xiaot623/tripweaver/internal/tracing"
	handler "github.com/xiaot623/tripweaver/internal/transport/http"
	"github.com/xiaot623/tripweaver/internal/transport/rpc"
	"github.com/xiaot623/tripweaver/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.LogLevel == "debug" {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	log.Printf("Starting tripweaver...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("RPC Port: %d", cfg.RPCPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	if cfg.MockMode() {
		log.Printf("Mode: %s", config.ModeMock)
	}

	shutdownTracing := tracing.Install(cfg.TracingEnabled)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize planner and providers
	ctx := context.Background()
	p, closeProviders, err := app.NewPlanner(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize planner: %v", err)
	}
	defer closeProviders()

	// Initialize service
	svc := service.New(db, p)

	httpServer := handler.NewServer(svc, ws.DefaultConfig())

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	log.Printf("HTTP API started on port %d", cfg.HTTPPort)

	var rpcServer *rpc.Server
	if cfg.RPCPort > 0 {
		rpcServer, err = rpc.NewServer(svc)
		if err != nil {
			log.Fatalf("Failed to create RPC server: %v", err)
		}
		go func() {
			addr := fmt.Sprintf(":%d", cfg.RPCPort)
			if err := rpcServer.Start(addr); err != nil {
				log.Fatalf("Failed to start RPC server: %v", err)
			}
		}()
		log.Printf("RPC API started on port %d", cfg.RPCPort)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down tripweaver...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}
	if rpcServer != nil {
		if err := rpcServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to shutdown RPC server gracefully: %v", err)
		}
	}

	// Let in-flight cache write-backs land before the cache connection closes.
	p.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Failed to flush traces: %v", err)
	}

	log.Println("Tripweaver stopped")
}
