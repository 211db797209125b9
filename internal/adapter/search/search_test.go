package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripweaver/internal/adapter"
)

func TestTavilyMissingKeyIsUnavailable(t *testing.T) {
	_, err := NewTavily("").Search(context.Background(), "hotels", 5)
	require.Error(t, err)
	assert.True(t, adapter.IsUnavailable(err))
}

func TestTavilySearch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"A","url":"https://a.example","content":"alpha"},
			{"title":"B","url":"https://b.example","content":"beta"},
			{"title":"C","url":"https://c.example","content":"gamma"}]}`))
	}))
	defer srv.Close()

	tv := NewTavilyWithClient("key", srv.Client())
	tv.BaseURL = srv.URL
	records, err := tv.Search(context.Background(), "hotels dubai", 2, IncludeDomains("booking.com"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://a.example", records[0].URL)
	assert.Equal(t, "hotels dubai", got["query"])
	assert.Equal(t, "basic", got["search_depth"])
	assert.Equal(t, []any{"booking.com"}, got["include_domains"])
}

func TestTavilyRetriesOn429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"A","url":"https://a.example","content":"x"}]}`))
	}))
	defer srv.Close()

	tv := NewTavilyWithClient("key", srv.Client())
	tv.BaseURL = srv.URL
	records, err := tv.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTavilyErrorStatuses(t *testing.T) {
	status := http.StatusInternalServerError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	tv := NewTavilyWithClient("key", srv.Client())
	tv.BaseURL = srv.URL

	_, err := tv.Search(context.Background(), "q", 5)
	assert.ErrorIs(t, err, adapter.ErrCallFailed)

	status = http.StatusUnauthorized
	_, err = tv.Search(context.Background(), "q", 5)
	assert.True(t, adapter.IsUnavailable(err))
}

func TestTavilyUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tv := NewTavily("key")
	tv.BaseURL = url
	_, err := tv.Search(context.Background(), "q", 5)
	assert.True(t, adapter.IsUnavailable(err))
}

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.booking.com%2Fhotel%2Fae%2Fatlantis.html" class="result-link">Atlantis The Palm</a></td></tr>
<tr><td class="result-snippet">Rooms from <b>$450</b> per night.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/guide" class="result-link">Dubai guide</a></td></tr>
<tr><td class="result-snippet">Where to stay.</td></tr>
</table></body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query = r.PostForm.Get("q")
		_, _ = w.Write([]byte(litePage))
	}))
	defer srv.Close()

	d := NewDuckDuckGoWithClient(srv.Client())
	d.Endpoint = srv.URL
	records, err := d.Search(context.Background(), "hotels dubai", 5, IncludeDomains("booking.com", "expedia.com"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://www.booking.com/hotel/ae/atlantis.html", records[0].URL)
	assert.Equal(t, "Atlantis The Palm", records[0].Title)
	assert.Equal(t, "Rooms from $450 per night.", records[0].Content)
	assert.Equal(t, "hotels dubai (site:booking.com OR site:expedia.com)", query)
}

func TestDuckDuckGoEmptyQuery(t *testing.T) {
	_, err := NewDuckDuckGo().Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, adapter.ErrCallFailed)
}

type countingProvider struct{ calls int32 }

func (c *countingProvider) Search(ctx context.Context, query string, maxResults int, opts ...Option) ([]Record, error) {
	atomic.AddInt32(&c.calls, 1)
	return nil, nil
}

func TestRateLimitedDelegates(t *testing.T) {
	inner := &countingProvider{}
	rl := NewRateLimited(inner, 0)
	for i := 0; i < 3; i++ {
		_, err := rl.Search(context.Background(), "q", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&inner.calls))
}

func TestRateLimitedHonoursContext(t *testing.T) {
	inner := &countingProvider{}
	rl := NewRateLimited(inner, 0.001)
	_, err := rl.Search(context.Background(), "q", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Search(ctx, "q", 1)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()
	flights, err := m.Search(context.Background(), "flights NBO to Dubai", 2)
	require.NoError(t, err)
	assert.Len(t, flights, 2)

	hotels, err := m.Search(context.Background(), "hotels Dubai", 10)
	require.NoError(t, err)
	assert.Len(t, hotels, 4)
}
