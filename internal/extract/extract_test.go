package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBareYearIsNotAPrice(t *testing.T) {
	assert.Nil(t, Price("2025", CategoryActivity))
	assert.Nil(t, Price("Best hotels in Dubai 2025", CategoryStay))
	assert.Nil(t, Price("from 2025", CategoryFlight))
}

func TestPriceDollar(t *testing.T) {
	p := Price("$450", CategoryFlight)
	require.NotNil(t, p)
	assert.Equal(t, 450.0, p.Amount)
	assert.Equal(t, "USD", p.Currency)
}

func TestPriceRejectsImplausibleFlight(t *testing.T) {
	assert.Nil(t, Price("$45", CategoryFlight))
	assert.Nil(t, Price("Fares up to $12,000 in first class", CategoryFlight))
}

func TestPriceStripsDiscounts(t *testing.T) {
	assert.Nil(t, Price("Save 30% off this weekend", CategoryActivity))
	p := Price("Save 30% off, now USD 120", CategoryActivity)
	require.NotNil(t, p)
	assert.Equal(t, 120.0, p.Amount)
}

func TestPriceScansPastImplausibleMatch(t *testing.T) {
	p := Price("Taxes $12, round trip $640", CategoryFlight)
	require.NotNil(t, p)
	assert.Equal(t, 640.0, p.Amount)
}

func TestPriceCurrencyMarkers(t *testing.T) {
	tests := []struct {
		text     string
		category Category
		amount   float64
		currency string
	}{
		{"Rooms from €89 a night", CategoryStay, 89, "EUR"},
		{"Rooms at 140 EUR per night", CategoryStay, 140, "EUR"},
		{"Tickets £25", CategoryActivity, 25, "GBP"},
		{"Return fares KES 65,000", CategoryFlight, 65000, "KES"},
		{"Desert safari AED 250", CategoryActivity, 250, "AED"},
		{"Flights from US$1,250.50", CategoryFlight, 1250.5, "USD"},
		{"Price: 75 per person", CategoryActivity, 75, "USD"},
		{"starting at 320 dollars", CategoryFlight, 320, "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p := Price(tt.text, tt.category)
			require.NotNil(t, p)
			assert.InDelta(t, tt.amount, p.Amount, 0.001)
			assert.Equal(t, tt.currency, p.Currency)
		})
	}
}

func TestPriceScaledByCurrency(t *testing.T) {
	// 300 KES is about 2 USD, far below a nightly stay.
	assert.Nil(t, Price("KES 300", CategoryStay))
	// 5,000 KES is inside the band once scaled.
	assert.NotNil(t, Price("KES 5,000", CategoryStay))
}

func TestPriceEmpty(t *testing.T) {
	assert.Nil(t, Price("", CategoryStay))
	assert.Nil(t, Price("no numbers here", CategoryStay))
}

func TestPlausible(t *testing.T) {
	assert.True(t, Plausible(CategoryFlight, 100, "USD"))
	assert.True(t, Plausible(CategoryFlight, 3000, "USD"))
	assert.False(t, Plausible(CategoryFlight, 99.99, "USD"))
	assert.False(t, Plausible(CategoryActivity, 0, "USD"))
	assert.True(t, Plausible(Category("other"), 900, "USD"))
	assert.True(t, Plausible(CategoryStay, 50, "XYZ"))
}

func TestToUSD(t *testing.T) {
	assert.Equal(t, 0.0, ToUSD(nil))
	assert.InDelta(t, 100, ToUSD(Price("AED 367", CategoryActivity)), 0.01)
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "USD", Currency("cheap"))
	assert.Equal(t, "USD", Currency("Trips across Europe"))
	assert.Equal(t, "EUR", Currency("from 90 euros"))
	assert.Equal(t, "KES", Currency("Ksh 4,000"))
	assert.Equal(t, "GBP", Currency("£12"))
	assert.Equal(t, "AED", Currency("AED 90"))
}

func TestRating(t *testing.T) {
	r := Rating("Guests rate it 4.5/5")
	require.NotNil(t, r)
	assert.Equal(t, 9.0, *r)

	r = Rating("Scored 8.7 / 10 on reviews")
	require.NotNil(t, r)
	assert.Equal(t, 8.7, *r)

	assert.Nil(t, Rating("five stars"))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		text string
		want *float64
	}{
		{"A 2.5 hour cruise", ptr(2.5)},
		{"Lasts 3-4 hours", ptr(3)},
		{"Half-day tour", ptr(4)},
		{"Full day desert trip", ptr(8)},
		{"90 minutes", ptr(1.5)},
		{"Visit the hotel", nil},
	}
	for _, tt := range tests {
		got := Duration(tt.text)
		if tt.want == nil {
			assert.Nil(t, got, tt.text)
			continue
		}
		require.NotNil(t, got, tt.text)
		assert.Equal(t, *tt.want, *got, tt.text)
	}
}

func TestTimes(t *testing.T) {
	d, a := Times("Departs 09:15am arrives 13:40")
	assert.Equal(t, "09:15am", d)
	assert.Equal(t, "13:40", a)

	d, a = Times("no schedule")
	assert.Empty(t, d)
	assert.Empty(t, a)
}

func TestFlightNumberAndStops(t *testing.T) {
	assert.Equal(t, "EK720", FlightNumber("Emirates EK 720 nonstop"))
	assert.Equal(t, "KQ310", FlightNumber("Kenya Airways KQ310"))
	assert.Empty(t, FlightNumber("no flight here"))

	require.NotNil(t, Stops("direct flight"))
	assert.Equal(t, 0, *Stops("Non-stop"))
	assert.Equal(t, 1, *Stops("one stop in Doha"))
	assert.Equal(t, 2, *Stops("2 stops"))
	assert.Nil(t, Stops("great views"))
}

func TestPick(t *testing.T) {
	assert.Equal(t, "Emirates", Pick("fly EMIRATES today", []string{"Qatar", "Emirates"}))
	assert.Empty(t, Pick("fly", []string{"Qatar"}))
}

func TestIsListicle(t *testing.T) {
	assert.True(t, IsListicle("Top 10 hotels in Dubai"))
	assert.True(t, IsListicle("15 Best Places to Stay"))
	assert.True(t, IsListicle("Best luxury hotels in Dubai"))
	assert.True(t, IsListicle("Things to do in Nairobi"))
	assert.False(t, IsListicle("Atlantis The Palm"))
}

func TestPriceIgnoresCodesInsideWords(t *testing.T) {
	assert.Nil(t, Price("Hotel Grandeur 450 per night", CategoryStay))
	assert.Nil(t, Price("Chauffeur 200 transfer", CategoryStay))
	assert.Nil(t, Price("Shadhs Lodge 120", CategoryStay))

	p := Price("Hotel Grandeur from 450 EUR", CategoryStay)
	require.NotNil(t, p)
	assert.Equal(t, 450.0, p.Amount)
	assert.Equal(t, "EUR", p.Currency)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "booking.com/hotel/ae/atlantis", NormalizeURL("https://www.Booking.com/hotel/ae/atlantis/?aid=1#x"))
	assert.Equal(t, NormalizeURL("http://booking.com/a"), NormalizeURL("https://www.booking.com/a/"))
	assert.Empty(t, NormalizeURL("  "))

	assert.NotEqual(t,
		NormalizeURL("https://www.google.com/travel/flights?tfs=AAA"),
		NormalizeURL("https://www.google.com/travel/flights?tfs=BBB"))
	assert.Equal(t,
		"google.com/travel/flights?hl=en&tfs=AAA",
		NormalizeURL("https://google.com/travel/flights?tfs=AAA&utm_source=x&hl=en&ref=home"))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{45.0, 45, true},
		{12, 12, true},
		{json.Number("3.5"), 3.5, true},
		{"$1,200", 1200, true},
		{"2.5 hours", 2.5, true},
		{"free", 0, false},
		{nil, 0, false},
		{[]int{1}, 0, false},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func ptr(v float64) *float64 { return &v }
