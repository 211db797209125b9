// Package extract turns free text from providers into typed, range-checked facts.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xiaot623/tripweaver/internal/domain"
)

// Category selects the plausible price range for a candidate.
type Category string

const (
	CategoryFlight   Category = "flight"
	CategoryStay     Category = "stay"
	CategoryActivity Category = "activity"
)

// plausibleUSD holds the accepted price band per category, in USD.
var plausibleUSD = map[Category][2]float64{
	CategoryFlight:   {100, 3000},
	CategoryStay:     {30, 1000},
	CategoryActivity: {5, 500},
}

var defaultBand = [2]float64{5, 1000}

// ratePerUSD is a fixed conversion table: units of currency per one USD.
var ratePerUSD = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"AED": 3.67,
	"KES": 129,
}

var (
	yearRe     = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	discountRe = regexp.MustCompile(`(?i)\b\d{1,3}\s?%\s*(?:off|discount|sale)\b`)

	amountExpr = `(\d[\d,]*(?:\.\d+)?)`
	markerExpr = `(US\$|\$|€|£|\b(?:USD|EUR|GBP|KES|KSh|AED|Dhs?)\b)`

	pricePatterns = []struct {
		re          *regexp.Regexp
		amountGroup int
		markerGroup int
	}{
		{regexp.MustCompile(`(?i)` + markerExpr + `\s*` + amountExpr), 2, 1},
		{regexp.MustCompile(`(?i)` + amountExpr + `\s*` + markerExpr), 1, 2},
		{regexp.MustCompile(`(?i)\b(?:price|cost|from|starting(?:\s+at)?|per\s+night)[:\s]*` + amountExpr), 1, 0},
	}
)

var markerCurrency = map[string]string{
	"us$": "USD", "$": "USD", "usd": "USD",
	"€": "EUR", "eur": "EUR",
	"£": "GBP", "gbp": "GBP",
	"kes": "KES", "ksh": "KES",
	"aed": "AED", "dh": "AED", "dhs": "AED",
}

// Price finds the first plausible currency-tagged amount in text.
// Years and discount percentages are removed before matching. It returns nil
// when nothing plausible is found; it never guesses a value.
func Price(text string, category Category) *domain.Money {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	clean := yearRe.ReplaceAllString(text, " ")
	clean = discountRe.ReplaceAllString(clean, " ")
	fallbackCurrency := Currency(clean)

	for _, p := range pricePatterns {
		for _, m := range p.re.FindAllStringSubmatch(clean, -1) {
			amount, ok := parseAmount(m[p.amountGroup])
			if !ok {
				continue
			}
			currency := fallbackCurrency
			if p.markerGroup > 0 {
				currency = markerCurrency[strings.ToLower(m[p.markerGroup])]
			}
			if Plausible(category, amount, currency) {
				return domain.NewMoney(amount, currency)
			}
		}
	}
	return nil
}

// Plausible reports whether amount in currency falls inside the category's band.
// Unknown currencies are judged as if they were USD.
func Plausible(category Category, amount float64, currency string) bool {
	if amount <= 0 {
		return false
	}
	band, ok := plausibleUSD[category]
	if !ok {
		band = defaultBand
	}
	rate := rateFor(currency)
	return amount >= band[0]*rate && amount <= band[1]*rate
}

// ToUSD converts m to USD with the fixed rate table.
func ToUSD(m *domain.Money) float64 {
	if m == nil {
		return 0
	}
	return m.Amount / rateFor(m.Currency)
}

func rateFor(currency string) float64 {
	if r, ok := ratePerUSD[strings.ToUpper(currency)]; ok {
		return r
	}
	return 1
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

var currencyDetectors = []struct {
	code string
	re   *regexp.Regexp
}{
	{"USD", regexp.MustCompile(`(?i)\$|\busd\b|\bdollars?\b`)},
	{"EUR", regexp.MustCompile(`(?i)€|\beur\b|\beuros?\b`)},
	{"KES", regexp.MustCompile(`(?i)\bkes\b|\bksh\b|\bkenyan shillings?\b`)},
	{"GBP", regexp.MustCompile(`(?i)£|\bgbp\b|\bpounds?\b`)},
	{"AED", regexp.MustCompile(`(?i)\baed\b|\bdhs?\b|\bdirhams?\b`)},
}

// Currency detects the currency mentioned in text, defaulting to USD.
func Currency(text string) string {
	for _, d := range currencyDetectors {
		if d.re.MatchString(text) {
			return d.code
		}
	}
	return domain.DefaultCurrency
}
