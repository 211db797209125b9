package domain

// TripPreferences is the traveler's input. It is never mutated during a run.
type TripPreferences struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	StartDate   Date           `json:"start_date"`
	EndDate     Date           `json:"end_date"`
	Adults      int            `json:"adults"`
	BudgetTier  BudgetTier     `json:"budget_tier"`
	Hobbies     []string       `json:"hobbies"`
	TripType    string         `json:"trip_type,omitempty"`
	Constraints map[string]any `json:"constraints,omitempty"`
}

// Nights returns the number of nights between start and end.
func (p TripPreferences) Nights() int {
	return p.StartDate.DaysUntil(p.EndDate)
}

// Days returns the number of calendar days in the trip, both ends included.
func (p TripPreferences) Days() int {
	n := p.Nights()
	if n < 0 {
		n = 0
	}
	return n + 1
}

// Clone returns a deep copy of the preferences.
func (p TripPreferences) Clone() TripPreferences {
	out := p
	if p.Hobbies != nil {
		out.Hobbies = append([]string(nil), p.Hobbies...)
	}
	if p.Constraints != nil {
		out.Constraints = cloneValue(p.Constraints).(map[string]any)
	}
	return out
}

// Money is an amount in a specific currency. A price is either nil or a full Money,
// so a price can never exist without a currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// NewMoney builds a Money, applying the default currency when none is given.
func NewMoney(amount float64, currency string) *Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Money{Amount: amount, Currency: currency}
}

// Clone returns a copy of m, or nil.
func (m *Money) Clone() *Money {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// FlightOption is one candidate flight.
type FlightOption struct {
	Summary      string     `json:"summary"`
	DepartTime   string     `json:"depart_time,omitempty"`
	ArriveTime   string     `json:"arrive_time,omitempty"`
	Airline      string     `json:"airline,omitempty"`
	FlightNumber string     `json:"flight_number,omitempty"`
	Stops        *int       `json:"stops,omitempty"`
	Price        *Money     `json:"price,omitempty"`
	Links        []string   `json:"links"`
	SourceURL    string     `json:"source_url,omitempty"`
	SourceTitle  string     `json:"source_title,omitempty"`
	Provenance   Provenance `json:"provenance"`
}

// Clone returns a deep copy of f.
func (f FlightOption) Clone() FlightOption {
	out := f
	if f.Stops != nil {
		s := *f.Stops
		out.Stops = &s
	}
	out.Price = f.Price.Clone()
	out.Links = cloneStrings(f.Links)
	return out
}

// StayOption is one candidate lodging.
type StayOption struct {
	Name        string     `json:"name"`
	Area        string     `json:"area"`
	Price       *Money     `json:"nightly_price,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	Highlights  []string   `json:"highlights"`
	Links       []string   `json:"links"`
	SourceURL   string     `json:"source_url,omitempty"`
	SourceTitle string     `json:"source_title,omitempty"`
	Provenance  Provenance `json:"provenance"`
}

// Clone returns a deep copy of s.
func (s StayOption) Clone() StayOption {
	out := s
	out.Price = s.Price.Clone()
	if s.Score != nil {
		v := *s.Score
		out.Score = &v
	}
	out.Highlights = cloneStrings(s.Highlights)
	out.Links = cloneStrings(s.Links)
	return out
}

// Activity is one thing to do at the destination.
type Activity struct {
	Title         string     `json:"title"`
	Location      string     `json:"location"`
	DurationHours *float64   `json:"duration_hours,omitempty"`
	Price         *Money     `json:"price,omitempty"`
	Tags          []string   `json:"tags"`
	SourceURL     string     `json:"source_url,omitempty"`
	SourceTitle   string     `json:"source_title,omitempty"`
	Provenance    Provenance `json:"provenance"`
}

// Clone returns a deep copy of a.
func (a Activity) Clone() Activity {
	out := a
	if a.DurationHours != nil {
		d := *a.DurationHours
		out.DurationHours = &d
	}
	out.Price = a.Price.Clone()
	out.Tags = cloneStrings(a.Tags)
	return out
}

// HasTag reports whether the activity carries tag.
func (a Activity) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DaySlotPlan is one calendar day of the itinerary.
type DaySlotPlan struct {
	Date      Date      `json:"date"`
	Morning   *Activity `json:"morning"`
	Afternoon *Activity `json:"afternoon"`
	Evening   *Activity `json:"evening"`
	Notes     string    `json:"notes,omitempty"`
}

// Placed returns the activities in slot order, skipping empty slots.
func (d DaySlotPlan) Placed() []*Activity {
	var out []*Activity
	for _, a := range []*Activity{d.Morning, d.Afternoon, d.Evening} {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// SourceRef is a citation kept in the plan's source index.
type SourceRef struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// BudgetSummary maps estimate names to USD amounts.
type BudgetSummary map[string]float64

// Budget summary keys.
const (
	BudgetNights       = "nights"
	BudgetFlight       = "flight_est"
	BudgetStayPerNight = "stay_per_night_est"
	BudgetActivityAvg  = "activity_avg_est"
	BudgetTotal        = "trip_total_est"
)

// TripPlan is the assembled plan.
type TripPlan struct {
	Flights    []FlightOption       `json:"flights"`
	Stays      []StayOption         `json:"stays"`
	Activities []Activity           `json:"activities"`
	Itinerary  []DaySlotPlan        `json:"itinerary"`
	Budget     BudgetSummary        `json:"budget"`
	Sources    map[string]SourceRef `json:"sources"`
}

// NewTripPlan returns a plan with every collection present and empty.
func NewTripPlan() *TripPlan {
	p := &TripPlan{}
	p.EnsureComplete()
	return p
}

// EnsureComplete replaces nil collections with empty ones so that callers
// always see every field.
func (p *TripPlan) EnsureComplete() {
	if p.Flights == nil {
		p.Flights = []FlightOption{}
	}
	if p.Stays == nil {
		p.Stays = []StayOption{}
	}
	if p.Activities == nil {
		p.Activities = []Activity{}
	}
	if p.Itinerary == nil {
		p.Itinerary = []DaySlotPlan{}
	}
	if p.Budget == nil {
		p.Budget = BudgetSummary{}
	}
	if p.Sources == nil {
		p.Sources = map[string]SourceRef{}
	}
}

// EmptyItinerary returns one empty DaySlotPlan per calendar day of the trip.
func EmptyItinerary(prefs TripPreferences) []DaySlotPlan {
	days := make([]DaySlotPlan, prefs.Days())
	for i := range days {
		days[i].Date = prefs.StartDate.AddDays(i)
	}
	return days
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	case []string:
		return cloneStrings(t)
	default:
		return v
	}
}
