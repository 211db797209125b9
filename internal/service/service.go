// Package service implements the plan and run use cases behind every transport.
package service

import (
	"context"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/planner"
	"github.com/xiaot623/tripweaver/internal/repository"
)

// Planner is the planning pipeline the service drives.
type Planner interface {
	Run(ctx context.Context, runID string, prefs domain.TripPreferences, observe planner.Observer) *domain.RunState
}

type Service struct {
	store   store.Store
	planner Planner
}

func New(store store.Store, planner Planner) *Service {
	return &Service{
		store:   store,
		planner: planner,
	}
}
