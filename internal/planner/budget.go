package planner

import (
	"math"

	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/extract"
)

// Budget defaults, in USD, used when the plan has no usable price.
const (
	DefaultFlightUSD      = 500.0
	DefaultStayNightlyUSD = 60.0
	DefaultActivityUSD    = 30.0
	activityBudgetSample  = 6
)

// EstimateBudget summarizes trip cost in USD. It is pure: the same plan and
// preferences always give the same summary, and missing prices fall back to
// defaults instead of failing.
//
//	total = cheapest flight + nights * (cheapest nightly stay + mean activity price)
//
// The activity mean is taken over the first six catalog entries, counting a
// missing price as the activity default. An empty catalog gives a mean of 0.
func EstimateBudget(plan *domain.TripPlan, prefs domain.TripPreferences) domain.BudgetSummary {
	nights := prefs.Nights()
	if nights < 0 {
		nights = 0
	}

	flight := DefaultFlightUSD
	stay := DefaultStayNightlyUSD
	activity := 0.0

	if plan != nil {
		if v, ok := cheapest(plan.Flights, func(f domain.FlightOption) *domain.Money { return f.Price }); ok {
			flight = v
		}
		if v, ok := cheapest(plan.Stays, func(s domain.StayOption) *domain.Money { return s.Price }); ok {
			stay = v
		}
		sample := plan.Activities
		if len(sample) > activityBudgetSample {
			sample = sample[:activityBudgetSample]
		}
		if len(sample) > 0 {
			sum := 0.0
			for _, a := range sample {
				if a.Price != nil {
					sum += extract.ToUSD(a.Price)
				} else {
					sum += DefaultActivityUSD
				}
			}
			activity = sum / float64(len(sample))
		}
	}

	total := flight + float64(nights)*(stay+activity)
	return domain.BudgetSummary{
		domain.BudgetNights:       float64(nights),
		domain.BudgetFlight:       round2(flight),
		domain.BudgetStayPerNight: round2(stay),
		domain.BudgetActivityAvg:  round2(activity),
		domain.BudgetTotal:        round2(total),
	}
}

func cheapest[T any](items []T, price func(T) *domain.Money) (float64, bool) {
	best := 0.0
	found := false
	for _, it := range items {
		m := price(it)
		if m == nil {
			continue
		}
		v := extract.ToUSD(m)
		if !found || v < best {
			best = v
			found = true
		}
	}
	return best, found
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
