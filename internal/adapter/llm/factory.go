package llm

import (
	"log"
	"time"
)

// NewGenerator creates a generator. In mock mode it returns canned,
// schema-shaped output; otherwise it talks to baseURL.
func NewGenerator(baseURL, apiKey, model string, timeout time.Duration, mock bool) Generator {
	if mock {
		log.Println("TRIPWEAVER_MODE=MOCK detected, using mock LLM client")
		return NewChatGenerator(NewMockClient(), model)
	}
	if baseURL == "" {
		log.Println("WARN: LLM_BASE_URL is empty, generative fallback disabled")
		return NewChatGenerator(nil, model)
	}
	return NewChatGenerator(NewClient(baseURL, apiKey, timeout), model)
}
