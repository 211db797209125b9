package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// GetRun returns a persisted run with its stage events.
func (s *Service) GetRun(ctx context.Context, runID string) (*domain.RunDetail, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	events, err := s.store.GetEvents(ctx, runID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return &domain.RunDetail{Run: run, Events: events}, nil
}

// GetRunEvents returns the stage events of a run after the given sequence number.
func (s *Service) GetRunEvents(ctx context.Context, runID string, afterSeq, limit int) ([]domain.RunEvent, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	events, err := s.store.GetEvents(ctx, runID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}

// ListRuns returns recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int, status domain.RunStatus) ([]domain.PlanRun, error) {
	runs, err := s.store.ListRuns(ctx, limit, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
