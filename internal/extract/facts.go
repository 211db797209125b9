package extract

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	ratingOutOf5Re  = regexp.MustCompile(`(\d(?:\.\d{1,2})?)\s*/\s*5\b`)
	ratingOutOf10Re = regexp.MustCompile(`(\d{1,2}(?:\.\d{1,2})?)\s*/\s*10\b`)

	hoursRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)(?:\s*(?:-|to)\s*\d+(?:\.\d+)?)?\s*(?:hours?|hrs?|h)\b`)
	minutesRe = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?)\b`)
	halfDayRe = regexp.MustCompile(`(?i)\bhalf[\s-]day\b`)
	fullDayRe = regexp.MustCompile(`(?i)\b(?:full[\s-]day|all[\s-]day|whole[\s-]day)\b`)

	timeRe         = regexp.MustCompile(`(?i)\b([0-2]?\d:[0-5]\d(?:\s?(?:am|pm))?)`)
	flightNumberRe = regexp.MustCompile(`\b([A-Z]{2}|[A-Z]\d|\d[A-Z])\s?(\d{2,4})\b`)
	stopsRe        = regexp.MustCompile(`(?i)\b(\d)\s*(?:stops?|layovers?)\b`)
	nonstopRe      = regexp.MustCompile(`(?i)\b(?:non-?stop|direct)\b`)
	oneStopRe      = regexp.MustCompile(`(?i)\bone\s+(?:stop|layover)\b`)

	listicleRe = regexp.MustCompile(`(?i)^\s*(?:the\s+)?(?:top\s+\d+|\d+\s+(?:best|top|cheap|cheapest|great|amazing)|best\s+(?:\w+\s+){0,3}(?:hotels?|places|areas)\s+(?:in|to))|\bthings\s+to\s+do\b`)

	numberRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
)

// Rating extracts a review score on the 0-10 scale. Scores written out of 5 are doubled.
func Rating(text string) *float64 {
	if m := ratingOutOf10Re.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 10 {
			return &v
		}
	}
	if m := ratingOutOf5Re.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 5 {
			v *= 2
			return &v
		}
	}
	return nil
}

// Duration extracts an activity length in hours.
func Duration(text string) *float64 {
	if fullDayRe.MatchString(text) {
		v := 8.0
		return &v
	}
	if halfDayRe.MatchString(text) {
		v := 4.0
		return &v
	}
	if m := hoursRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 && v <= 24 {
			return &v
		}
	}
	if m := minutesRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			h := math.Round(v/60*100) / 100
			return &h
		}
	}
	return nil
}

// Times returns the first two clock times in text, empty when absent.
func Times(text string) (depart, arrive string) {
	found := timeRe.FindAllStringSubmatch(text, 2)
	if len(found) > 0 {
		depart = strings.TrimSpace(found[0][1])
	}
	if len(found) > 1 {
		arrive = strings.TrimSpace(found[1][1])
	}
	return depart, arrive
}

// FlightNumber finds an IATA-style flight number such as "EK 720".
func FlightNumber(text string) string {
	m := flightNumberRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + m[2]
}

// Stops reads the stop count from phrases like "nonstop" or "2 stops".
func Stops(text string) *int {
	var n int
	switch {
	case nonstopRe.MatchString(text):
		n = 0
	case oneStopRe.MatchString(text):
		n = 1
	default:
		m := stopsRe.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		n, _ = strconv.Atoi(m[1])
	}
	return &n
}

// Pick returns the first option that occurs in text, ignoring case.
func Pick(text string, options []string) string {
	lower := strings.ToLower(text)
	for _, opt := range options {
		if strings.Contains(lower, strings.ToLower(opt)) {
			return opt
		}
	}
	return ""
}

// IsListicle reports whether a result title is a roundup article rather than a venue.
func IsListicle(title string) bool {
	return listicleRe.MatchString(title)
}

// NormalizeURL reduces a URL to a dedupe key: lower-cased host without "www.",
// no fragment or trailing slash, and the query sorted with tracking
// parameters removed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(raw, "/"))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	key := host + strings.TrimSuffix(u.EscapedPath(), "/")

	query := u.Query()
	for name := range query {
		if isTrackingParam(name) {
			query.Del(name)
		}
	}
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return key
}

var trackingParams = map[string]bool{
	"ref": true, "aid": true, "label": true, "fbclid": true, "gclid": true,
}

func isTrackingParam(name string) bool {
	name = strings.ToLower(name)
	return strings.HasPrefix(name, "utm_") || trackingParams[name]
}

// Number coerces a loosely typed value into a float. Strings may carry
// currency symbols or units ("$45", "2.5 hours"). It reports false when no
// number can be recovered.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		m := numberRe.FindString(t)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
