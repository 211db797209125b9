// Package store persists the audit trail of plan runs.
package store

import (
	"context"
	"time"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Run operations
	CreateRun(ctx context.Context, run *domain.PlanRun) error
	CompleteRun(ctx context.Context, runID string, status domain.RunStatus, plan []byte, errMsg string, endedAt time.Time) error
	GetRun(ctx context.Context, runID string) (*domain.PlanRun, error)
	ListRuns(ctx context.Context, limit int, status domain.RunStatus) ([]domain.PlanRun, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.RunEvent) error
	GetEvents(ctx context.Context, runID string, afterSeq int, limit int) ([]domain.RunEvent, error)

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
