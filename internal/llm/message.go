package llm

import openai "github.com/sashabaranov/go-openai"

type Role string

// RoleUser is the only role this client sends.
const RoleUser Role = openai.ChatMessageRoleUser

// Message is one entry of the request's message list.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
