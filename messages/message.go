package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tells apart the different flavours of entries that share a role.
type Kind string

const (
	// KindText is free text typed by the user or produced by the model.
	KindText Kind = "text"
	// KindToolResult is the serialized result of a capability invocation.
	KindToolResult Kind = "tool_result"
	// KindInstruction is an orchestrator generated instruction sent as a user entry.
	KindInstruction Kind = "instruction"
	// KindApology is the user facing notice appended when a turn is aborted.
	KindApology Kind = "apology"
)

// ToolResultPrefix is the fixed framing used for capability results in history.
const ToolResultPrefix = "Tool result returned for ["

// Message is a single entry in the conversation history.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	RunID      uuid.UUID       `json:"run_id,omitempty"`
	Role       Role            `json:"role"`
	Kind       Kind            `json:"kind"`
	Content    string          `json:"content"`
	Tool       string          `json:"tool,omitempty"`
	ToolOutput string          `json:"tool_output,omitempty"`
	Timestamp  strfmt.DateTime `json:"timestamp"`

	// Prevents unkeyed literals
	_ struct{}
}

func newMessage(role Role, kind Kind, content string) Message {
	return Message{
		ID:        uuidx.New(),
		Role:      role,
		Kind:      kind,
		Content:   content,
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

// User creates a user authored text message.
func User(content string) Message {
	return newMessage(RoleUser, KindText, content)
}

// Assistant creates an assistant authored text message.
func Assistant(content string) Message {
	return newMessage(RoleAssistant, KindText, content)
}

// Instruction creates a user entry that carries an orchestrator instruction to the model.
func Instruction(content string) Message {
	return newMessage(RoleUser, KindInstruction, content)
}

// Apology creates the assistant entry that reports an aborted turn.
func Apology(content string) Message {
	return newMessage(RoleAssistant, KindApology, content)
}

// ToolResult creates the assistant entry recording the output of a capability.
// The content uses the fixed framing "Tool result returned for [<name>]: <output>".
func ToolResult(name, output string) Message {
	msg := newMessage(RoleAssistant, KindToolResult, FormatToolResult(name, output))
	msg.Tool = name
	msg.ToolOutput = output
	return msg
}

// FormatToolResult renders the framing used for capability results.
func FormatToolResult(name, output string) string {
	return fmt.Sprintf("%s%s]: %s", ToolResultPrefix, name, output)
}

// IsToolResult reports whether the message records a capability result.
func (m Message) IsToolResult() bool {
	return m.Kind == KindToolResult || strings.HasPrefix(m.Content, ToolResultPrefix)
}

// WithRunID returns a copy of the message tagged with the run that produced it.
func (m Message) WithRunID(id uuid.UUID) Message {
	m.RunID = id
	return m
}
