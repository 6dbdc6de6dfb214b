package model

// Role identifies who produced a message in the conversation
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message represents one turn in a conversation.
// Position in the slice is the only ordering key.
type Message struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	ToolName string `json:"tool_name,omitempty"` // Only set when Role is RoleTool
}

// ToolCall is a tool invocation requested by the model mid-stream
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// UserMessage builds a user turn
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant turn
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage builds a tool result turn
func ToolMessage(toolName, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolName: toolName}
}

// CloneMessages returns an independent copy of a message list
func CloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
