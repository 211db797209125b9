package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/xiaot623/tripweaver/internal/adapter"
	"github.com/xiaot623/tripweaver/internal/adapter/cache"
	"github.com/xiaot623/tripweaver/internal/adapter/llm"
	"github.com/xiaot623/tripweaver/internal/config"
	"github.com/xiaot623/tripweaver/internal/domain"
	"github.com/xiaot623/tripweaver/internal/extract"
	"github.com/xiaot623/tripweaver/internal/policy"
)

// cacheTier reads a JSON list of T stored under key. A miss yields nothing
// and no error.
func cacheTier[T any](c cache.Cache, key cache.Key, mark func(*T)) strategy[T] {
	return strategy[T]{
		tier: TierCache,
		fetch: func(ctx context.Context, _ []T) ([]T, error) {
			if c == nil {
				return nil, nil
			}
			data, found, err := c.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, nil
			}
			var items []T
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, adapter.CallFailed("cache", "decode", err)
			}
			for i := range items {
				mark(&items[i])
			}
			return items, nil
		},
	}
}

// generateTier asks the generator for candidates. prompt sees the items
// collected by earlier tiers.
func generateTier[T any](g llm.Generator, schema llm.Schema, prompt func(have []T) string, decode func([]byte) ([]T, error)) strategy[T] {
	return strategy[T]{
		tier: TierGenerated,
		fetch: func(ctx context.Context, have []T) ([]T, error) {
			if g == nil {
				return nil, adapter.Unavailable("llm", "generate", nil)
			}
			raw, err := g.Generate(ctx, prompt(have), schema)
			if err != nil {
				return nil, err
			}
			items, err := decode(raw)
			if err != nil {
				return nil, adapter.CallFailed("llm", "decode", err)
			}
			return items, nil
		},
	}
}

// admit returns a policy filter for candidates of kind, or nil when policy
// is disabled. Evaluation errors let the candidate through.
func admit[T any](p *Planner, prefs domain.TripPreferences, kind string, view func(T) policy.Candidate) func(context.Context, T) (bool, string) {
	if p.policy == nil || !p.tuning.PolicyEnabled {
		return nil
	}
	in := policyPrefs(prefs)
	return func(ctx context.Context, item T) (bool, string) {
		c := view(item)
		c.Kind = kind
		decision, reason, err := p.policy.Evaluate(ctx, policy.Input{Candidate: c, Prefs: in})
		if err != nil {
			log.Printf("WARN: policy evaluation failed, allowing candidate: %v", err)
			return true, ""
		}
		return decision != policy.DecisionBlock, reason
	}
}

func policyPrefs(prefs domain.TripPreferences) map[string]any {
	constraints := map[string]any{}
	for k, v := range prefs.Clone().Constraints {
		constraints[k] = v
	}
	hobbies := make([]any, len(prefs.Hobbies))
	for i, h := range prefs.Hobbies {
		hobbies[i] = h
	}
	return map[string]any{
		"budget_tier": string(prefs.BudgetTier),
		"hobbies":     hobbies,
		"trip_type":   prefs.TripType,
		"adults":      prefs.Adults,
		"constraints": constraints,
	}
}

func priceUSD(m *domain.Money) *float64 {
	if m == nil {
		return nil
	}
	v := extract.ToUSD(m)
	return &v
}

func flightKey(f domain.FlightOption) string {
	if k := extract.NormalizeURL(f.SourceURL); k != "" {
		return k
	}
	return strings.ToLower(strings.TrimSpace(f.Summary))
}

func stayKey(s domain.StayOption) string {
	if k := extract.NormalizeURL(s.SourceURL); k != "" {
		return k
	}
	return strings.ToLower(strings.TrimSpace(s.Name))
}

// activityKeyFunc returns the catalog identity for activities. The default
// is the exact title.
func activityKeyFunc(mode string) func(domain.Activity) string {
	if mode == config.DedupeByTitleLocation {
		return func(a domain.Activity) string {
			return strings.ToLower(strings.TrimSpace(a.Title)) + "|" + strings.ToLower(strings.TrimSpace(a.Location))
		}
	}
	return func(a domain.Activity) string { return a.Title }
}

// DedupeActivities keeps the first activity for each key, in order.
func DedupeActivities(items []domain.Activity, mode string) []domain.Activity {
	key := activityKeyFunc(mode)
	seen := map[string]bool{}
	out := make([]domain.Activity, 0, len(items))
	for _, a := range items {
		k := key(a)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

// summarize renders earlier candidates for a generation prompt.
func summarize(lines []string, limit int) string {
	if len(lines) == 0 {
		return "none"
	}
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return "- " + strings.Join(lines, "\n- ")
}

func numberSchema(minimum float64) map[string]any {
	s := map[string]any{"type": "number"}
	if minimum > 0 {
		s["minimum"] = minimum
	}
	return s
}

func listSchema(name, listKey string, props map[string]any, required ...string) llm.Schema {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return llm.Schema{
		Name: name,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				listKey: map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": props,
						"required":   req,
					},
				},
			},
			"required": []any{listKey},
		},
	}
}

func sourceRef(title, content string) domain.SourceRef {
	return domain.SourceRef{Title: title, Snippet: truncate(content, snippetLimit)}
}

func describeMoney(m *domain.Money) string {
	if m == nil {
		return "price unknown"
	}
	return fmt.Sprintf("%.0f %s", m.Amount, m.Currency)
}
