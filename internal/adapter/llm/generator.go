package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/xiaot623/tripweaver/internal/adapter"
)

const providerName = "llm"

const systemPrompt = "You are a travel research assistant. Reply with JSON only, matching the requested schema exactly. Never invent booking links."

// ChatGenerator turns a chat client into a schema-constrained JSON generator.
type ChatGenerator struct {
	client      ChatClient
	model       string
	temperature float64
}

// NewChatGenerator wraps client. The model name is sent with every request.
func NewChatGenerator(client ChatClient, model string) *ChatGenerator {
	return &ChatGenerator{client: client, model: model, temperature: 0.4}
}

// Generate asks the model for JSON matching schema. The raw JSON is returned
// untouched apart from stripping markdown code fences; decoding it into typed
// records is the caller's job.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	if g.client == nil {
		return nil, adapter.Unavailable(providerName, "generate", errors.New("no client configured"))
	}
	temp := g.temperature
	req := &ChatCompletionRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: &temp,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schema.Name,
				"schema": schema.Schema,
				"strict": false,
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, adapter.CallFailed(providerName, "generate", errors.New("empty completion"))
	}

	content := StripCodeFence(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, adapter.CallFailed(providerName, "generate", fmt.Errorf("completion is not valid JSON"))
	}
	return json.RawMessage(content), nil
}

// StripCodeFence removes a surrounding ```json fence if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func classify(err error) error {
	var se *StatusError
	if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden || se.StatusCode == http.StatusNotFound) {
		return adapter.Unavailable(providerName, "generate", err)
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return adapter.Unavailable(providerName, "generate", err)
	}
	return adapter.CallFailed(providerName, "generate", err)
}
