package models

import "encoding/json"

// Role indicates the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a model's request to execute a named tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one message-equivalent unit in a conversation. Assistant turns may
// carry tool-call requests with empty content; tool turns must reference the
// tool-call id they answer, or the model API rejects the history.
type Turn struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemTurn builds a system-prompt turn.
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// UserTurn builds a user message turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// ToolTurn builds a tool-result turn correlated to a tool-call id.
func ToolTurn(toolCallID, content string) Turn {
	return Turn{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolCallRecord captures one executed tool call for the response metadata.
// It lives only for the duration of a single orchestration invocation and is
// never persisted to the context store.
type ToolCallRecord struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    string          `json:"result"`
}
