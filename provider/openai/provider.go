package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const DefaultModel = string(openai.ChatModelGPT4oMini)

type Provider struct {
	client *openai.Client
}

var _ provider.Provider = (*Provider)(nil)

func New(options ...option.RequestOption) *Provider {
	opts := append([]option.RequestOption{option.WithMaxRetries(0)}, options...)
	client := openai.NewClient(opts...)
	return &Provider{
		client: client,
	}
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (openai.ChatCompletionNewParams, error) {
	tools := make([]openai.ChatCompletionToolParam, len(params.Tools))
	for i, spec := range params.Tools {
		parameters, err := spec.SchemaMap()
		if err != nil {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("failed to convert tool %s to schema: %w", spec.Name, err)
		}

		def := openai.FunctionDefinitionParam{
			Name:       openai.String(spec.Name),
			Parameters: openai.F(shared.FunctionParameters(parameters)),
		}
		if strings.TrimSpace(spec.Description) != "" {
			def.Description = openai.String(spec.Description)
		}

		tools[i] = openai.ChatCompletionToolParam{
			Type:     openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(def),
		}
	}

	model := strings.TrimSpace(params.Model)
	if model == "" {
		model = DefaultModel
	}

	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(messagesToOpenAI(params.Instructions, params.History)),
		Model:    openai.F(model),
		N:        openai.Int(1),
	}
	if params.MaxTokens > 0 {
		oaiParams.MaxCompletionTokens = openai.Int(params.MaxTokens)
	}
	if len(tools) > 0 {
		oaiParams.Tools = openai.F(tools)
		// one capability per turn
		oaiParams.ParallelToolCalls = openai.Bool(false)
	}

	return oaiParams, nil
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	chatParams, err := p.buildRequest(&params)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	strm := p.client.Chat.Completions.NewStreaming(ctx, chatParams)
	if err := strm.Err(); err != nil {
		_ = strm.Close()
		return nil, err
	}

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		// Ensure cleanup on all exit paths
		defer strm.Close()

		send := func(evs ...provider.StreamEvent) bool {
			for _, ev := range evs {
				select {
				case events <- ev:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		var blocks blockTracker
		for strm.Next() {
			chunk := strm.Current()
			if !send(blocks.chunk(&chunk)...) {
				return
			}
		}
		if err := strm.Err(); err != nil {
			send(provider.Error{Err: err})
			return
		}
		send(blocks.finish("")...)
	}()
	return events, nil
}

// blockTracker synthesizes content blocks from chat completion chunks.
type blockTracker struct {
	textOpen bool
	tools    []int
	open     map[int]bool
	done     bool
}

func (b *blockTracker) chunk(chunk *openai.ChatCompletionChunk) []provider.StreamEvent {
	if b.done || len(chunk.Choices) == 0 {
		return nil
	}
	if b.open == nil {
		b.open = make(map[int]bool)
	}

	choice := chunk.Choices[0]
	var out []provider.StreamEvent

	if choice.Delta.Content != "" {
		if !b.textOpen {
			b.textOpen = true
			b.open[0] = true
			out = append(out, provider.BlockStart{Index: 0, Type: provider.BlockText})
		}
		out = append(out, provider.TextDelta{Index: 0, Text: choice.Delta.Content})
	}

	for _, tc := range choice.Delta.ToolCalls {
		index := int(tc.Index) + 1
		if _, seen := b.open[index]; !seen {
			if b.textOpen && b.open[0] {
				b.open[0] = false
				out = append(out, provider.BlockStop{Index: 0})
			}
			b.open[index] = true
			b.tools = append(b.tools, index)
			out = append(out, provider.BlockStart{
				Index: index,
				Type:  provider.BlockToolUse,
				ID:    tc.ID,
				Name:  tc.Function.Name,
			})
		}
		if tc.Function.Arguments != "" {
			out = append(out, provider.InputDelta{Index: index, PartialJSON: tc.Function.Arguments})
		}
	}

	if reason := string(choice.FinishReason); reason != "" {
		out = append(out, b.finish(reason)...)
	}
	return out
}

// finish closes the open blocks and reports the stop reason. An empty reason means the stream
// ended without one, in which case no TurnEnd is reported.
func (b *blockTracker) finish(reason string) []provider.StreamEvent {
	if b.done {
		return nil
	}
	b.done = true

	var out []provider.StreamEvent
	if b.textOpen && b.open[0] {
		b.open[0] = false
		out = append(out, provider.BlockStop{Index: 0})
	}
	for _, index := range b.tools {
		if b.open[index] {
			b.open[index] = false
			out = append(out, provider.BlockStop{Index: index})
		}
	}
	if reason != "" {
		out = append(out, provider.TurnEnd{StopReason: reason})
	}
	return out
}

func messagesToOpenAI(instructions string, history []messages.Message) []openai.ChatCompletionMessageParamUnion {
	var result []openai.ChatCompletionMessageParamUnion
	if strings.TrimSpace(instructions) != "" {
		result = append(result, openai.SystemMessage(instructions))
	}

	for _, message := range history {
		if strings.TrimSpace(message.Content) == "" {
			continue
		}
		switch message.Role {
		case messages.RoleAssistant:
			am := openai.ChatCompletionAssistantMessageParam{
				Role: openai.F(openai.ChatCompletionAssistantMessageParamRoleAssistant),
			}
			am.Content = openai.F([]openai.ChatCompletionAssistantMessageParamContentUnion{
				openai.TextPart(message.Content),
			})
			result = append(result, am)
		default:
			result = append(result, openai.UserMessageParts(openai.TextPart(message.Content)))
		}
	}
	return result
}
