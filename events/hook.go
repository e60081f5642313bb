package events

import (
	"context"
	"fmt"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/tool"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Hook observes the processing of queries.
type Hook interface {
	// OnUserPrompt is called once per query with the message appended to the history.
	OnUserPrompt(context.Context, messages.Message)
	// OnStreamEvent is called for every semantic event, in stream order.
	OnStreamEvent(context.Context, StreamEvent)
	// OnToolCall is called right before a capability is invoked.
	OnToolCall(context.Context, uuid.UUID, tool.Call)
	// OnToolResult is called with the tool result message appended to the history.
	OnToolResult(context.Context, messages.Message)
	// OnAssistantMessage is called for every assistant text committed to the history,
	// including apologies for aborted turns.
	OnAssistantMessage(context.Context, messages.Message)
	// OnError is called when a turn is aborted.
	OnError(context.Context, Error)
}

// Error describes an aborted turn.
type Error struct {
	RunID     uuid.UUID       `json:"run_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (e Error) Error() string {
	return fmt.Sprintf("run_id: %s, turn_id: %s, timestamp: %s, error: %v", e.RunID, e.TurnID, e.Timestamp, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// MarshalJSON implements custom JSON marshaling for Error
func (e Error) MarshalJSON() ([]byte, error) {
	result, err := marshalHeader(typeError, Header{RunID: e.RunID, TurnID: e.TurnID, Timestamp: e.Timestamp})
	if err != nil {
		return nil, err
	}
	msg := "<nil>"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return setFields(result, "error", msg)
}

// UnmarshalJSON implements custom JSON unmarshaling for Error.
// The error is restored as a plain error carrying the original message.
func (e *Error) UnmarshalJSON(data []byte) error {
	var h Header
	if err := unmarshalHeader(typeError, data, &h); err != nil {
		return err
	}
	e.RunID, e.TurnID, e.Timestamp = h.RunID, h.TurnID, h.Timestamp

	errMsg := gjson.GetBytes(data, "error")
	if !errMsg.Exists() {
		return fmt.Errorf("missing required field 'error'")
	}
	e.Err = remoteError(errMsg.String())
	return nil
}

type remoteError string

func (r remoteError) Error() string { return string(r) }

// Nop is a Hook that ignores everything. Embed it to implement only some callbacks.
type Nop struct{}

var _ Hook = Nop{}

func (Nop) OnUserPrompt(context.Context, messages.Message)       {}
func (Nop) OnStreamEvent(context.Context, StreamEvent)           {}
func (Nop) OnToolCall(context.Context, uuid.UUID, tool.Call)     {}
func (Nop) OnToolResult(context.Context, messages.Message)       {}
func (Nop) OnAssistantMessage(context.Context, messages.Message) {}
func (Nop) OnError(context.Context, Error)                       {}

// Multi fans every callback out to hooks in order. Nil hooks are skipped.
func Multi(hooks ...Hook) Hook {
	filtered := make(multi, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

type multi []Hook

func (m multi) OnUserPrompt(ctx context.Context, msg messages.Message) {
	for _, h := range m {
		h.OnUserPrompt(ctx, msg)
	}
}

func (m multi) OnStreamEvent(ctx context.Context, ev StreamEvent) {
	for _, h := range m {
		h.OnStreamEvent(ctx, ev)
	}
}

func (m multi) OnToolCall(ctx context.Context, runID uuid.UUID, call tool.Call) {
	for _, h := range m {
		h.OnToolCall(ctx, runID, call)
	}
}

func (m multi) OnToolResult(ctx context.Context, msg messages.Message) {
	for _, h := range m {
		h.OnToolResult(ctx, msg)
	}
}

func (m multi) OnAssistantMessage(ctx context.Context, msg messages.Message) {
	for _, h := range m {
		h.OnAssistantMessage(ctx, msg)
	}
}

func (m multi) OnError(ctx context.Context, err Error) {
	for _, h := range m {
		h.OnError(ctx, err)
	}
}
