// Package scripted provides a deterministic completion provider for tests and demos.
package scripted

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/casualjim/hoot/provider"
)

// Response configures one completion request in a scripted sequence.
// Err is returned synchronously from ChatCompletion, Events are streamed otherwise.
type Response struct {
	Events []provider.StreamEvent
	Err    error
}

// Provider replays scripted responses in order and records every request it receives.
type Provider struct {
	mu        sync.Mutex
	index     int
	responses []Response
	requests  []provider.CompletionParams
	fallback  func(provider.CompletionParams) Response
}

// New creates a provider that replays responses in order.
func New(responses ...Response) *Provider {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &Provider{responses: cloned}
}

// Func creates a provider that computes each response from the request.
func Func(fn func(provider.CompletionParams) Response) *Provider {
	return &Provider{fallback: fn}
}

var _ provider.Provider = (*Provider)(nil)

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	p.mu.Lock()
	p.requests = append(p.requests, params)

	var current Response
	switch {
	case p.index < len(p.responses):
		current = p.responses[p.index]
		p.index++
	case p.fallback != nil:
		p.index++
		current = p.fallback(params)
	default:
		p.mu.Unlock()
		return nil, fmt.Errorf("script exhausted at step %d", p.index+1)
	}
	p.mu.Unlock()

	if current.Err != nil {
		return nil, current.Err
	}

	events := make(chan provider.StreamEvent)
	go func() {
		defer close(events)
		for _, ev := range current.Events {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// Requests returns the requests received so far.
func (p *Provider) Requests() []provider.CompletionParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]provider.CompletionParams, len(p.requests))
	copy(out, p.requests)
	return out
}

// Calls returns how many requests were received.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Text scripts a response made of text fragments that ends naturally.
func Text(fragments ...string) Response {
	events := []provider.StreamEvent{provider.BlockStart{Index: 0, Type: provider.BlockText}}
	for _, f := range fragments {
		events = append(events, provider.TextDelta{Index: 0, Text: f})
	}
	events = append(events,
		provider.BlockStop{Index: 0},
		provider.TurnEnd{StopReason: provider.StopEndTurn},
	)
	return Response{Events: events}
}

// ToolUse scripts a response that requests a capability, optionally preceded by text.
// The argument payload is streamed in the given fragments.
func ToolUse(preamble, name string, argFragments ...string) Response {
	var events []provider.StreamEvent
	index := 0
	if preamble != "" {
		events = append(events,
			provider.BlockStart{Index: index, Type: provider.BlockText},
			provider.TextDelta{Index: index, Text: preamble},
			provider.BlockStop{Index: index},
		)
		index++
	}
	events = append(events, provider.BlockStart{
		Index: index,
		Type:  provider.BlockToolUse,
		ID:    "toolu_" + strings.ReplaceAll(name, " ", "_"),
		Name:  name,
	})
	for _, f := range argFragments {
		events = append(events, provider.InputDelta{Index: index, PartialJSON: f})
	}
	events = append(events,
		provider.BlockStop{Index: index},
		provider.TurnEnd{StopReason: provider.StopToolUse},
	)
	return Response{Events: events}
}

// Fail scripts a synchronous request failure.
func Fail(err error) Response {
	return Response{Err: err}
}

// Offered returns the capability names offered on a request.
func Offered(params provider.CompletionParams) []string {
	names := make([]string, 0, len(params.Tools))
	for _, spec := range params.Tools {
		names = append(names, spec.Name)
	}
	return names
}

