package hoot

import (
	"log/slog"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/retry"
	"github.com/casualjim/hoot/provider"
	"github.com/casualjim/hoot/tool"
	"github.com/fogfish/opts"
)

// Option configures an Orchestrator.
type Option = opts.Option[Orchestrator]

// WithModel sets the model name passed to the completion provider.
var WithModel = opts.ForName[Orchestrator, string]("model")

// WithMaxTokens bounds the length of every completion.
var WithMaxTokens = opts.ForName[Orchestrator, int64]("maxTokens")

// WithInstructions sets a system prompt.
var WithInstructions = opts.ForName[Orchestrator, string]("instructions")

// WithMaxDepth sets how many capability executions a single query may perform.
var WithMaxDepth = opts.ForName[Orchestrator, int]("maxDepth")

// WithRetryPolicy sets the backoff policy for completion requests.
var WithRetryPolicy = opts.ForName[Orchestrator, retry.Policy]("retryPolicy")

// WithLogger sets the logger, slog.Default() is used otherwise.
var WithLogger = opts.ForName[Orchestrator, *slog.Logger]("logger")

// WithCompletion sets the completion provider. It is required.
func WithCompletion(p provider.Provider) Option {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		o.completion = p
		return nil
	})
}

// WithConnectors adds capability providers. They are registered in the given order.
func WithConnectors(connector tool.Connector, extra ...tool.Connector) Option {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		o.connectors = append(o.connectors, connector)
		o.connectors = append(o.connectors, extra...)
		return nil
	})
}

// WithHooks adds observers, they are notified in the given order.
func WithHooks(hooks ...events.Hook) Option {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		o.hooks = append(o.hooks, hooks...)
		return nil
	})
}
