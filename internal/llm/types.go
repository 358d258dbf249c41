// Package llm defines the chat-completion gateway used by agents and the
// orchestrator, together with its Anthropic and OpenAI-compatible backends.
package llm

import "context"

// Role identifies the author of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	// ID correlates the later tool-result message with this call.
	ID string
	// Name is the requested tool name.
	Name string
	// Arguments is the raw JSON object produced by the model.
	Arguments string
}

// Message is one entry in a conversation.
type Message struct {
	Role    Role
	Content string
	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []ToolCall
	// ToolCallID and Name are set on tool-role messages.
	ToolCallID string
	Name       string
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant message from a completion.
func AssistantMessage(c *Completion) Message {
	return Message{Role: RoleAssistant, Content: c.Content, ToolCalls: c.ToolCalls}
}

// ToolMessage builds the tool-role reply to a tool call.
func ToolMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, Name: name}
}

// ToolSchema describes a tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	// Parameters is a JSON schema object.
	Parameters map[string]any
}

// Request is one chat-completion request.
type Request struct {
	Model     string
	Messages  []Message
	Tools     []ToolSchema
	MaxTokens int
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Total returns input plus output tokens.
func (u Usage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// Completion is the structured reply to a Request.
type Completion struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
}

// HasToolCalls reports whether the model requested any tools.
func (c *Completion) HasToolCalls() bool {
	return len(c.ToolCalls) > 0
}

// Gateway sends a request to a language model and returns one completion.
type Gateway interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req Request) (*Completion, error)

// Complete calls f.
func (f GatewayFunc) Complete(ctx context.Context, req Request) (*Completion, error) {
	return f(ctx, req)
}
