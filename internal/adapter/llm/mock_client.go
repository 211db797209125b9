package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MockClient is a ChatClient that answers with JSON shaped after the
// requested schema. Strings are derived from the property name, numbers
// from a few well-known field names, raised to the schema minimum if one is set.
type MockClient struct {
	// Items is the number of elements produced for array schemas.
	Items int
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{Items: 6}
}

// CreateChatCompletion returns a mock response.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var schema map[string]any
	if js, ok := req.ResponseFormat["json_schema"].(map[string]any); ok {
		schema, _ = js["schema"].(map[string]any)
	}
	value := m.sample(schema, "", 0)
	content, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock output: %w", err)
	}

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      &ChatMessage{Role: "assistant", Content: string(content)},
				FinishReason: "stop",
			},
		},
		Usage: &Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(content) / 4,
			TotalTokens:      m.estimateTokens(req) + len(content)/4,
		},
	}, nil
}

func (m *MockClient) sample(schema map[string]any, name string, idx int) any {
	switch schema["type"] {
	case "object":
		props, _ := schema["properties"].(map[string]any)
		out := make(map[string]any, len(props))
		for key, raw := range props {
			sub, _ := raw.(map[string]any)
			out[key] = m.sample(sub, key, idx)
		}
		return out
	case "array":
		items, _ := schema["items"].(map[string]any)
		out := make([]any, m.Items)
		for i := range out {
			out[i] = m.sample(items, name, i)
		}
		return out
	case "number", "integer":
		v := sampleNumber(name, idx)
		if lo, ok := schema["minimum"].(float64); ok && v < lo {
			v = lo + float64(idx*10)
		}
		return v
	case "boolean":
		return false
	default:
		if enum, ok := schema["enum"].([]any); ok && len(enum) > 0 {
			return enum[0]
		}
		return sampleString(name, idx)
	}
}

func sampleNumber(name string, idx int) float64 {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "duration"):
		return []float64{2, 3, 1.5, 2.5}[idx%4]
	case strings.Contains(lower, "price"):
		return float64(25 + idx*10)
	case strings.Contains(lower, "stops"):
		return 0
	case strings.Contains(lower, "score"), strings.Contains(lower, "rating"):
		return 8
	default:
		return float64(idx + 1)
	}
}

func sampleString(name string, idx int) string {
	switch strings.ToLower(name) {
	case "currency":
		return "USD"
	case "":
		return fmt.Sprintf("item %d", idx+1)
	default:
		return fmt.Sprintf("Sample %s %d", strings.ReplaceAll(name, "_", " "), idx+1)
	}
}

// estimateTokens provides a rough token estimate.
func (m *MockClient) estimateTokens(req *ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}
