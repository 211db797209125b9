package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/xiaot623/tripweaver/internal/adapter"
)

const (
	ddgName       = "duckduckgo"
	ddgDefaultURL = "https://lite.duckduckgo.com/lite/"
	ddgUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DuckDuckGo scrapes DuckDuckGo's lite HTML interface. It needs no API key,
// which makes it the fallback when Tavily is not configured.
type DuckDuckGo struct {
	Endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo searcher with a modest timeout.
func NewDuckDuckGo() *DuckDuckGo {
	return NewDuckDuckGoWithClient(&http.Client{Timeout: 15 * time.Second})
}

// NewDuckDuckGoWithClient creates a DuckDuckGo searcher using the supplied HTTP client.
func NewDuckDuckGoWithClient(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{Endpoint: ddgDefaultURL, client: client}
}

// Search posts the query form and parses the result table.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int, opts ...Option) ([]Record, error) {
	if err := validQuery(query); err != nil {
		return nil, adapter.CallFailed(ddgName, "search", err)
	}
	o := buildOptions(opts)
	if len(o.IncludeDomains) > 0 {
		sites := make([]string, len(o.IncludeDomains))
		for i, dom := range o.IncludeDomains {
			sites[i] = "site:" + dom
		}
		query = query + " (" + strings.Join(sites, " OR ") + ")"
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, adapter.CallFailed(ddgName, "search", err)
	}
	req.Header.Set("User-Agent", ddgUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, adapter.Unavailable(ddgName, "search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapter.CallFailed(ddgName, "search", fmt.Errorf("http %d", resp.StatusCode))
	}
	records, err := parseLite(resp.Body)
	if err != nil {
		return nil, adapter.CallFailed(ddgName, "search", err)
	}
	return trimResults(records, maxResults), nil
}

// parseLite extracts result links and their snippets from the lite page.
func parseLite(r io.Reader) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	snippets := doc.Find("td.result-snippet").Map(func(_ int, s *goquery.Selection) string {
		return strings.Join(strings.Fields(s.Text()), " ")
	})

	var records []Record
	seen := make(map[string]bool)
	doc.Find("a.result-link").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := resolveRedirect(strings.TrimSpace(href))
		title := strings.TrimSpace(s.Text())
		if link == "" || title == "" || seen[link] {
			return
		}
		seen[link] = true
		rec := Record{Title: title, URL: link}
		if i < len(snippets) {
			rec.Content = snippets[i]
		}
		records = append(records, rec)
	})
	return records, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
