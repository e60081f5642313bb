package provider

import (
	"context"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/tool"
	"github.com/google/uuid"
)

// Provider defines the interface for completion API providers (e.g., OpenAI, Anthropic).
// Implementations of this interface handle the specifics of communicating with
// different services while maintaining a consistent interface for the rest
// of the application.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) (<-chan StreamEvent, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(context.Context, CompletionParams) (<-chan StreamEvent, error)

func (f ProviderFunc) ChatCompletion(ctx context.Context, params CompletionParams) (<-chan StreamEvent, error) {
	return f(ctx, params)
}

// CompletionParams encapsulates all parameters needed for a chat completion request.
type CompletionParams struct {
	// RunID uniquely identifies the query this completion belongs to
	RunID uuid.UUID

	// TurnID identifies this single request within the run
	TurnID uuid.UUID

	// Model is the model name understood by the provider
	Model string

	// MaxTokens bounds the length of the response, 0 means the adapter default
	MaxTokens int64

	// Instructions is an optional system prompt
	Instructions string

	// History is the conversation so far, oldest first
	History []messages.Message

	// Tools is the capability catalog offered on this request.
	// An empty catalog means the model may not request capabilities.
	Tools []tool.Spec

	// Prevents unkeyed literals
	_ struct{}
}

// Stop reasons reported by the completion APIs.
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
	StopSequence  = "stop_sequence"

	// OpenAI flavoured
	StopStop      = "stop"
	StopToolCalls = "tool_calls"
	StopLength    = "length"
)

// RequestsCapability reports whether a raw stop reason means the model asked for a capability.
func RequestsCapability(stopReason string) bool {
	return stopReason == StopToolUse || stopReason == StopToolCalls
}
