// Package policy filters plan candidates against traveler constraints with OPA.
package policy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by Evaluate.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
// The module must define package trip_policy with a decision rule and a deny set.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.trip_policy"),
		rego.Module("trip_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input is what a policy sees for one candidate.
type Input struct {
	Candidate Candidate      `json:"candidate"`
	Prefs     map[string]any `json:"prefs"`
}

// Candidate is the policy view of a flight, stay or activity.
type Candidate struct {
	Kind     string   `json:"kind"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	PriceUSD *float64 `json:"price_usd,omitempty"`
}

// Evaluate checks one candidate.
// Returns: decision (allow, block), reason (joined deny messages), error
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(toMap(input)))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "default", nil
	}

	doc, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return DecisionAllow, "unexpected return type", nil
	}

	decision, _ := doc["decision"].(string)
	if decision == "" {
		decision = DecisionAllow
	}

	var reasons []string
	if deny, ok := doc["deny"].([]interface{}); ok {
		for _, d := range deny {
			if s, ok := d.(string); ok {
				reasons = append(reasons, s)
			}
		}
	}
	sort.Strings(reasons)
	return decision, strings.Join(reasons, "; "), nil
}

// toMap converts the typed input into the plain JSON shape rego expects.
func toMap(in Input) map[string]interface{} {
	c := map[string]interface{}{
		"kind": in.Candidate.Kind,
		"text": in.Candidate.Text,
		"tags": toAnySlice(in.Candidate.Tags),
	}
	if in.Candidate.PriceUSD != nil {
		c["price_usd"] = *in.Candidate.PriceUSD
	}
	prefs := in.Prefs
	if prefs == nil {
		prefs = map[string]any{}
	}
	return map[string]interface{}{"candidate": c, "prefs": prefs}
}

func toAnySlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package trip_policy

default decision = "allow"

decision = "block" {
	count(deny) > 0
}

budget_caps = {
	"activity": {"low": 60, "mid": 200, "high": 1000},
	"stay": {"low": 120, "mid": 400, "high": 2000},
}

# Keywords the traveler wants to avoid, as a list or a single string.
avoided[kw] {
	kw := input.prefs.constraints.avoid[_]
	is_string(kw)
}

avoided[kw] {
	kw := input.prefs.constraints.avoid
	is_string(kw)
}

deny[msg] {
	kw := avoided[_]
	kw != ""
	contains(lower(input.candidate.text), lower(kw))
	msg := sprintf("matches avoided keyword %q", [kw])
}

deny[msg] {
	max_price := budget_caps[input.candidate.kind][input.prefs.budget_tier]
	input.candidate.price_usd > max_price
	msg := sprintf("price %v above %v cap for %s budget", [input.candidate.price_usd, max_price, input.prefs.budget_tier])
}

deny[msg] {
	input.candidate.kind == "activity"
	limit := input.prefs.constraints.max_activity_price
	is_number(limit)
	input.candidate.price_usd > limit
	msg := sprintf("price %v above requested maximum %v", [input.candidate.price_usd, limit])
}
`
