package llm

import (
	"encoding/json"
	"strings"
)

// CompletionsPath is appended to the configured base URL.
const CompletionsPath = "/chat/completions"

// ChatRequest is the body of a streaming chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	// Temperature is omitted when nil so the server default applies.
	Temperature *float64 `json:"temperature,omitempty"`
}

// NewChatRequest builds a streaming request carrying input as the single
// user message.
func NewChatRequest(model string, temperature *float64, input string) *ChatRequest {
	return &ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleUser, Content: input},
		},
		Stream:      true,
		Temperature: temperature,
	}
}

// Marshal serializes the request body.
func (r *ChatRequest) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Endpoint joins baseURL and CompletionsPath without doubling the slash.
func Endpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + CompletionsPath
}
