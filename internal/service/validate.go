package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// MaxTripDays bounds the length of a requested trip.
const MaxTripDays = 30

var (
	// ErrInvalidPreferences is returned for requests the planner cannot serve.
	ErrInvalidPreferences = errors.New("invalid preferences")
	// ErrRunNotFound is returned when a run ID is unknown.
	ErrRunNotFound = errors.New("run not found")
)

// NormalizePreferences trims free text and fills defaults for omitted fields.
func NormalizePreferences(prefs domain.TripPreferences) domain.TripPreferences {
	out := prefs.Clone()
	out.Origin = strings.TrimSpace(out.Origin)
	out.Destination = strings.TrimSpace(out.Destination)
	out.TripType = strings.TrimSpace(out.TripType)
	if out.Adults == 0 {
		out.Adults = 1
	}
	if out.BudgetTier == "" {
		out.BudgetTier = domain.BudgetMid
	}
	out.BudgetTier = domain.BudgetTier(strings.ToLower(string(out.BudgetTier)))
	return out
}

// ValidatePreferences checks a normalized request.
func ValidatePreferences(prefs domain.TripPreferences) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidPreferences, fmt.Sprintf(format, args...))
	}
	if prefs.Origin == "" {
		return invalid("origin is required")
	}
	if prefs.Destination == "" {
		return invalid("destination is required")
	}
	if prefs.StartDate.IsZero() || prefs.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if !prefs.EndDate.After(prefs.StartDate.Time) {
		return invalid("end_date must be after start_date")
	}
	if days := prefs.Days(); days > MaxTripDays {
		return invalid("trip is %d days, the maximum is %d", days, MaxTripDays)
	}
	if prefs.Adults < 1 {
		return invalid("adults must be at least 1")
	}
	if !prefs.BudgetTier.Valid() {
		return invalid("budget_tier must be one of low, mid, high")
	}
	return nil
}
