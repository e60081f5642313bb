package hoot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/internal/reducer"
	"github.com/casualjim/hoot/internal/registry"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/retry"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/casualjim/hoot/provider"
	"github.com/casualjim/hoot/tool"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives a conversation between a user, a completion provider and a set of
// capability providers. Queries are processed one at a time.
type Orchestrator struct {
	completion   provider.Provider
	model        string
	maxTokens    int64
	instructions string
	maxDepth     int
	retryPolicy  retry.Policy
	connectors   []tool.Connector
	hooks        []events.Hook
	logger       *slog.Logger

	hook     events.Hook
	reducer  *reducer.Reducer
	registry *registry.Registry
	history  *messages.History

	mu      sync.Mutex
	started bool
}

// New creates an orchestrator. A completion provider is required, everything else has defaults.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		maxDepth:    DefaultMaxDepth,
		retryPolicy: retry.DefaultPolicy(),
	}
	if err := opts.Apply(o, options); err != nil {
		return nil, err
	}
	if o.completion == nil {
		return nil, errors.New("a completion provider is required")
	}
	if o.maxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", o.maxDepth)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.hook = events.Multi(o.hooks...)
	o.reducer = reducer.New(o.hook, o.logger)
	o.logger = o.logger.With(slogx.LoggerName("hoot"))
	o.registry = registry.New()
	o.history = messages.NewHistory()
	return o, nil
}

type discovery struct {
	conn  tool.Connection
	specs []tool.Spec
}

// Start connects to every capability provider concurrently and registers their capabilities
// in configuration order. When any provider fails, the connections opened so far are closed.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return ErrAlreadyStarted
	}

	found := make([]discovery, len(o.connectors))
	g, gctx := errgroup.WithContext(ctx)
	for i, connector := range o.connectors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// connections outlive Start, so they are not bound to the group context
			conn, err := connector.Connect(ctx)
			if err != nil {
				return fmt.Errorf("connect %s: %w", connector.ID(), err)
			}
			found[i].conn = conn
			specs, err := conn.Discover(gctx)
			if err != nil {
				return fmt.Errorf("discover %s: %w", connector.ID(), err)
			}
			found[i].specs = specs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.closeAll(found)
		return err
	}

	for i, connector := range o.connectors {
		err := o.registry.Register(registry.Binding{
			ID:           connector.ID(),
			Conn:         found[i].conn,
			Capabilities: found[i].specs,
		})
		if err != nil {
			if cerr := o.registry.Close(); cerr != nil {
				o.logger.Warn("closing registered providers", slogx.Error(cerr))
			}
			o.closeAll(found[i:])
			o.registry = registry.New()
			return err
		}
		o.logger.Debug("registered provider", slogx.Provider(connector.ID()), slog.Int("capabilities", len(found[i].specs)))
	}

	o.started = true
	o.logger.Info("orchestrator started", slog.Int("providers", o.registry.Len()), slog.Int("capabilities", len(o.registry.AllCapabilities())))
	return nil
}

func (o *Orchestrator) closeAll(found []discovery) {
	for _, d := range found {
		if d.conn == nil {
			continue
		}
		if err := d.conn.Close(); err != nil {
			o.logger.Warn("closing provider connection", slogx.Error(err))
		}
	}
}

// Stop closes every provider connection. Errors are collected, every connection gets closed.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		return nil
	}
	o.started = false
	err := o.registry.Close()
	o.registry = registry.New()
	return err
}

// History returns a copy of the conversation so far.
func (o *Orchestrator) History() []messages.Message {
	return o.history.Messages()
}

// Capabilities returns every registered capability, in provider order.
func (o *Orchestrator) Capabilities() []tool.Spec {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registry.AllCapabilities()
}

// Reset clears the conversation. Provider connections stay open.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history.Reset()
}

type run struct {
	id uuid.UUID
}

// ProcessQuery appends the query to the history and drives the model until it answers without
// requesting a capability. It returns the updated history. When the query is aborted the history
// ends with an apology and the error is a *TurnError.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string) ([]messages.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		return o.history.Messages(), ErrNotStarted
	}

	r := run{id: uuidx.New()}
	logger := o.logger.With(slogx.Stringer("run_id", r.id))
	logger.Debug("processing query")

	prompt := messages.User(withPreamble(query)).WithRunID(r.id)
	o.history.Add(prompt)
	o.hook.OnUserPrompt(ctx, prompt)

	if err := o.runTurn(ctx, logger, r, RecursionState{}); err != nil {
		var te *TurnError
		if !errors.As(err, &te) {
			te = &TurnError{RunID: r.id, Err: err}
		}
		sorry := messages.Apology(apology(te.Err)).WithRunID(r.id)
		o.history.Add(sorry)
		o.hook.OnAssistantMessage(ctx, sorry)
		o.hook.OnError(ctx, events.Error{RunID: r.id, Err: te.Err, Timestamp: strfmt.DateTime(time.Now())})
		logger.Error("query aborted", slogx.Depth(te.Depth), slogx.Error(te.Err))
		return o.history.Messages(), te
	}
	return o.history.Messages(), nil
}

func (o *Orchestrator) runTurn(ctx context.Context, logger *slog.Logger, r run, state RecursionState) error {
	var offered []tool.Spec
	if state.Allow(o.maxDepth) {
		offered = o.registry.AllCapabilities()
	}

	outcome, err := o.complete(ctx, r, offered)
	o.commit(ctx, r, outcome.Text)
	if err != nil {
		return &TurnError{RunID: r.id, Depth: state.Depth, Err: err}
	}

	if outcome.StopReason != events.CapabilityRequested || outcome.Call == nil {
		return nil
	}
	call := *outcome.Call

	if !state.Allow(o.maxDepth) {
		logger.Warn("capability limit reached, asking for a final answer", slogx.Capability(call.Name), slogx.Depth(state.Depth))
		return o.finalAnswer(ctx, logger, r, state)
	}

	binding, err := o.registry.Resolve(call.Name)
	if err != nil {
		return &TurnError{RunID: r.id, Depth: state.Depth, Err: fmt.Errorf("%w: %s", ErrUnknownCapability, call.Name)}
	}

	o.hook.OnToolCall(ctx, r.id, call)
	logger.Debug("invoking capability", slogx.Provider(binding.ID), slogx.Capability(call.Name), slogx.Depth(state.Depth))
	result, err := binding.Conn.Invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		return &TurnError{
			RunID: r.id,
			Depth: state.Depth,
			Err:   fmt.Errorf("%w: %s on %s: %w", ErrCapabilityFailed, call.Name, binding.ID, err),
		}
	}

	res := messages.ToolResult(call.Name, result.Text()).WithRunID(r.id)
	o.history.Add(res)
	o.hook.OnToolResult(ctx, res)

	return o.runTurn(ctx, logger, r, state.Advance(o.maxDepth))
}

// finalAnswer tells the model to stop and issues one last request without capabilities.
// Its result is returned whatever the stop reason.
func (o *Orchestrator) finalAnswer(ctx context.Context, logger *slog.Logger, r run, state RecursionState) error {
	o.history.Add(messages.Instruction(HaltInstruction).WithRunID(r.id))

	outcome, err := o.complete(ctx, r, nil)
	o.commit(ctx, r, outcome.Text)
	if err != nil {
		return &TurnError{RunID: r.id, Depth: state.Depth, Err: err}
	}
	if outcome.StopReason == events.CapabilityRequested {
		logger.Warn("ignoring capability request after the limit", slogx.Depth(state.Depth))
	}
	return nil
}

// complete issues one completion request, retrying transient failures, and reduces the stream.
func (o *Orchestrator) complete(ctx context.Context, r run, offered []tool.Spec) (reducer.Outcome, error) {
	turnID := uuidx.New()
	params := provider.CompletionParams{
		RunID:        r.id,
		TurnID:       turnID,
		Model:        o.model,
		MaxTokens:    o.maxTokens,
		Instructions: o.instructions,
		History:      o.history.Messages(),
		Tools:        offered,
	}

	stream, err := retry.Do(ctx, o.retryPolicy, func(ctx context.Context) (<-chan provider.StreamEvent, error) {
		return o.completion.ChatCompletion(ctx, params)
	})
	if err != nil {
		return reducer.Outcome{}, err
	}
	return o.reducer.Reduce(ctx, r.id, turnID, stream)
}

func (o *Orchestrator) commit(ctx context.Context, r run, text string) {
	if text == "" {
		return
	}
	msg := messages.Assistant(text).WithRunID(r.id)
	o.history.Add(msg)
	o.hook.OnAssistantMessage(ctx, msg)
}
