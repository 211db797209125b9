package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripweaver/internal/domain"
)

func TestDecodeActivities_LooseShapes(t *testing.T) {
	raw := []byte(`{"results": [
		{"name": "Dhow cruise", "address": "Dubai Marina", "duration": "2.5 hours", "price": "$60"},
		{"title": "Burj Khalifa", "location": "Downtown", "duration_hours": "forever", "est_price": 1200},
		{"title": "", "location": "Nowhere"},
		{"title": "No location"},
		"not an object",
		{"title": 42, "location": "Deira", "tags": "souk"}
	]}`)

	got, err := decodeActivities(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	dhow := got[0]
	assert.Equal(t, "Dhow cruise", dhow.Title)
	assert.Equal(t, "Dubai Marina", dhow.Location)
	require.NotNil(t, dhow.DurationHours)
	assert.Equal(t, 2.5, *dhow.DurationHours)
	require.NotNil(t, dhow.Price)
	assert.Equal(t, 60.0, dhow.Price.Amount)
	assert.Equal(t, "USD", dhow.Price.Currency)
	assert.Equal(t, domain.ProvenanceGenerated, dhow.Provenance)

	burj := got[1]
	assert.Nil(t, burj.DurationHours)
	assert.Nil(t, burj.Price, "implausible price is nulled")

	assert.Equal(t, "42", got[2].Title)
	assert.Equal(t, []string{"souk"}, got[2].Tags)
}

func TestDecodeActivities_BareArray(t *testing.T) {
	got, err := decodeActivities([]byte(`[{"title": "Spa", "location": "Jumeirah", "est_price": {"amount": 90, "currency": "EUR"}}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, "EUR", got[0].Price.Currency)
}

func TestDecodeActivities_InvalidJSON(t *testing.T) {
	_, err := decodeActivities([]byte(`not json`))
	assert.Error(t, err)

	_, err = decodeActivities([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestDecodeFlightsAndStays(t *testing.T) {
	flights, err := decodeFlights([]byte(`{"flights": [
		{"summary": "NBO-DXB morning", "carrier": "Kenya Airways", "stops": "1", "price": 45},
		{"airline": "No summary"}
	]}`))
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "Kenya Airways", flights[0].Airline)
	require.NotNil(t, flights[0].Stops)
	assert.Equal(t, 1, *flights[0].Stops)
	assert.Nil(t, flights[0].Price)

	stays, err := decodeStays([]byte(`{"stays": [{"hotel": "Rove", "price_per_night": 110, "rating": 8.4}]}`), "Dubai")
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, "Rove", stays[0].Name)
	assert.Equal(t, "Dubai", stays[0].Area)
	require.NotNil(t, stays[0].Price)
	assert.Equal(t, 110.0, stays[0].Price.Amount)
	require.NotNil(t, stays[0].Score)
	assert.Equal(t, 8.4, *stays[0].Score)
}

func TestDecodeActivities_DurationPhrases(t *testing.T) {
	got, err := decodeActivities([]byte(`[
		{"title": "Desert safari", "location": "Lahbab", "duration_hours": "half day"},
		{"title": "Museum", "location": "Al Fahidi", "duration": "90 minutes"},
		{"title": "Hatta trip", "location": "Hatta", "duration_hours": "full day"},
		{"title": "Spa", "location": "Jumeirah", "duration_hours": "3"}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, want := range []float64{4, 1.5, 8, 3} {
		require.NotNil(t, got[i].DurationHours, got[i].Title)
		assert.Equal(t, want, *got[i].DurationHours, got[i].Title)
	}
}

func TestDecode_MixedListElementsKeepCandidate(t *testing.T) {
	acts, err := decodeActivities([]byte(`[{"title": "Golf", "location": "Emirates Hills", "tags": ["golf", 3, null, " outdoor "]}]`))
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, []string{"golf", "outdoor"}, acts[0].Tags)

	stays, err := decodeStays([]byte(`{"stays": [{"name": "Rove", "highlights": ["pool", {"x": 1}, 7]}]}`), "Dubai")
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, []string{"pool"}, stays[0].Highlights)
}
