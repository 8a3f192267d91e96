package domain

import (
	"context"
	"encoding/json"
)

// Role tags a chat message.
type Role string

// Chat roles understood by generation providers.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// System creates a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User creates a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant creates an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// FunctionSpec describes a callable function offered to the model.
// Parameters must marshal to a JSON schema object.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  any
}

// FunctionCall is a function invocation returned by the model.
type FunctionCall struct {
	Name      string
	Arguments json.RawMessage
}

// Completion is a free-text completion with token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator is the text generation contract: free text or structured function calls.
type Generator interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
	CallFunction(ctx context.Context, messages []Message, fn FunctionSpec) ([]FunctionCall, error)
}
