// Package llm provides an OpenAI-compatible client and the schema-constrained
// generator the planner uses for its last-resort tier.
package llm

import (
	"context"
	"encoding/json"
)

// ChatClient defines the chat completion call the generator is built on.
type ChatClient interface {
	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Schema is a named JSON schema the model output must satisfy.
type Schema struct {
	Name   string
	Schema map[string]any
}

// Generator produces JSON matching a schema from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
}

// Ensure implementations satisfy the interfaces.
var (
	_ ChatClient = (*Client)(nil)
	_ ChatClient = (*MockClient)(nil)
	_ Generator  = (*ChatGenerator)(nil)
)
