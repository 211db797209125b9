package planner

import (
	"fmt"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// Scheduling thresholds, in hours.
const (
	FullDayHours     = 8.0
	LongHours        = 4.0
	ShortHours       = 3.0
	DefaultSlotHours = 2.0
)

const slotsPerDay = 3

// daySlots holds the candidates for morning, afternoon and evening.
type daySlots [slotsPerDay][]*domain.Activity

// BuildItinerary lays the catalog out over the trip, one entry per calendar
// day. Slots are filled day by day in catalog order (morning, afternoon,
// evening); activities beyond the available slots stay in the catalog only.
// Placed activities point into catalog.
//
// When excludeTravelDays is set and the trip is longer than two days, the
// first and last day are left free for travel.
func BuildItinerary(prefs domain.TripPreferences, catalog []domain.Activity, excludeTravelDays bool) []domain.DaySlotPlan {
	days := domain.EmptyItinerary(prefs)
	n := len(days)

	first, last := 0, n-1
	if excludeTravelDays && n > 2 {
		first, last = 1, n-2
	}

	next := 0
	for d := first; d <= last && next < len(catalog); d++ {
		var slots daySlots
		for s := 0; s < slotsPerDay && next < len(catalog); s++ {
			slots[s] = append(slots[s], &catalog[next])
			next++
		}
		placed := repairDay(slots)
		days[d].Morning, days[d].Afternoon, days[d].Evening = placed[0], placed[1], placed[2]
	}

	origin := prefs.Origin
	if origin == "" {
		origin = "home"
	}
	switch {
	case n == 1:
		days[0].Notes = "Arrival and departure on the same day."
	case n > 1:
		days[0].Notes = fmt.Sprintf("Arrival day: travel from %s and check in.", origin)
		days[n-1].Notes = fmt.Sprintf("Departure day: check out and travel back to %s.", origin)
	}
	return days
}

// repairDay makes one day feasible. Slots holding several activities keep
// the first. A full-day activity clears every other slot; a long activity
// only allows a short one in the following slot, taken from that slot's own
// candidates. Cleared slots are never back-filled from the catalog.
func repairDay(slots daySlots) [slotsPerDay]*domain.Activity {
	var day [slotsPerDay]*domain.Activity
	for s, list := range slots {
		if len(list) > 0 {
			day[s] = list[0]
		}
	}

	for s, a := range day {
		if a != nil && hours(a) >= FullDayHours {
			for other := range day {
				if other != s {
					day[other] = nil
				}
			}
			return day
		}
	}

	for s := 0; s < slotsPerDay-1; s++ {
		if day[s] == nil || hours(day[s]) <= LongHours {
			continue
		}
		if day[s+1] == nil || hours(day[s+1]) <= ShortHours {
			continue
		}
		day[s+1] = nil
		for _, alt := range slots[s+1][1:] {
			if hours(alt) <= ShortHours {
				day[s+1] = alt
				break
			}
		}
	}
	return day
}

func hours(a *domain.Activity) float64 {
	if a.DurationHours == nil {
		return DefaultSlotHours
	}
	return *a.DurationHours
}
