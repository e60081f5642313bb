// Package anthropic adapts the Anthropic Messages streaming API to provider.Provider.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/provider"
	"github.com/casualjim/hoot/tool"
	"github.com/goccy/go-json"
)

const (
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 4096
)

type Provider struct {
	client anthropic.Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates the adapter. The SDK's own retries are disabled, retrying is the caller's concern.
func New(options ...option.RequestOption) *Provider {
	opts := append([]option.RequestOption{option.WithMaxRetries(0)}, options...)
	return &Provider{
		client: anthropic.NewClient(opts...),
	}
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (anthropic.MessageNewParams, error) {
	tools := make([]anthropic.ToolUnionParam, 0, len(params.Tools))
	for _, spec := range params.Tools {
		param, err := toolParam(spec)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &param})
	}

	model := strings.TrimSpace(params.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messagesToAnthropic(params.History),
	}
	if len(tools) > 0 {
		req.Tools = tools
	}
	if system := strings.TrimSpace(params.Instructions); system != "" {
		req.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return req, nil
}

func toolParam(spec tool.Spec) (anthropic.ToolParam, error) {
	schema, err := spec.SchemaMap()
	if err != nil {
		return anthropic.ToolParam{}, fmt.Errorf("tool %s: %w", spec.Name, err)
	}
	var required []string
	if list, ok := schema["required"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				required = append(required, s)
			}
		}
	}
	param := anthropic.ToolParam{
		Name: spec.Name,
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: schema["properties"],
			Required:   required,
		},
	}
	if desc := strings.TrimSpace(spec.Description); desc != "" {
		param.Description = anthropic.String(desc)
	}
	return param, nil
}

// messagesToAnthropic converts the history, merging consecutive entries of the same role into one
// message since the API expects alternating roles.
func messagesToAnthropic(history []messages.Message) []anthropic.MessageParam {
	type turn struct {
		role  messages.Role
		texts []string
	}
	var turns []turn
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].role == msg.Role {
			turns[n-1].texts = append(turns[n-1].texts, msg.Content)
			continue
		}
		turns = append(turns, turn{role: msg.Role, texts: []string{msg.Content}})
	}

	out := make([]anthropic.MessageParam, 0, len(turns))
	for i, t := range turns {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(t.texts))
		for j, text := range t.texts {
			// a trailing assistant message is a prefill, the API rejects trailing whitespace there
			if i == len(turns)-1 && j == len(t.texts)-1 && t.role == messages.RoleAssistant {
				text = strings.TrimRight(text, " \t\r\n")
			}
			blocks = append(blocks, anthropic.NewTextBlock(text))
		}
		if t.role == messages.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	req, err := p.buildRequest(&params)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	// the request is sent here, a failed request surfaces before any event is read
	stream := p.client.Messages.NewStreaming(ctx, req)
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, err
	}

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		defer stream.Close()

		send := func(ev provider.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for stream.Next() {
			for _, ev := range translate(stream.Current()) {
				if !send(ev) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			send(provider.Error{Err: err})
		}
	}()
	return events, nil
}

func translate(event anthropic.MessageStreamEventUnion) []provider.StreamEvent {
	switch variant := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		return nil

	case anthropic.ContentBlockStartEvent:
		index := int(variant.Index)
		block := variant.ContentBlock
		switch block.Type {
		case "text":
			out := []provider.StreamEvent{provider.BlockStart{Index: index, Type: provider.BlockText}}
			if block.Text != "" {
				out = append(out, provider.TextDelta{Index: index, Text: block.Text})
			}
			return out
		case "tool_use":
			out := []provider.StreamEvent{provider.BlockStart{
				Index: index,
				Type:  provider.BlockToolUse,
				ID:    block.ID,
				Name:  block.Name,
			}}
			if raw := initialInput(block.Input); raw != "" {
				out = append(out, provider.InputDelta{Index: index, PartialJSON: raw})
			}
			return out
		default:
			return []provider.StreamEvent{provider.BlockStart{Index: index, Type: provider.BlockType(block.Type)}}
		}

	case anthropic.ContentBlockDeltaEvent:
		index := int(variant.Index)
		switch delta := variant.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			return []provider.StreamEvent{provider.TextDelta{Index: index, Text: delta.Text}}
		case anthropic.InputJSONDelta:
			return []provider.StreamEvent{provider.InputDelta{Index: index, PartialJSON: delta.PartialJSON}}
		default:
			return []provider.StreamEvent{provider.Unknown{Type: variant.Delta.Type, Raw: variant.RawJSON()}}
		}

	case anthropic.ContentBlockStopEvent:
		return []provider.StreamEvent{provider.BlockStop{Index: int(variant.Index)}}

	case anthropic.MessageDeltaEvent:
		if reason := string(variant.Delta.StopReason); reason != "" {
			return []provider.StreamEvent{provider.TurnEnd{StopReason: reason}}
		}
		return nil

	case anthropic.MessageStopEvent:
		return nil

	default:
		return []provider.StreamEvent{provider.Unknown{Type: event.Type, Raw: event.RawJSON()}}
	}
}

// initialInput returns the input a tool_use block starts with. Streaming responses normally start
// with an empty object and send the arguments as deltas.
func initialInput(input any) string {
	if input == nil {
		return ""
	}
	b, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "{}" || raw == "null" {
		return ""
	}
	return raw
}
