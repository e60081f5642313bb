/*
Package hoot connects a language model to capability providers and drives the conversation
between them.

An Orchestrator owns the conversation history, a completion provider (Anthropic, OpenAI or a
scripted test double) and a registry of capabilities discovered from one or more providers.
Providers are usually MCP servers started as subprocesses, but any tool.Connector works,
including in-process Go functions.

# Basic Usage

	o, err := hoot.New(
		hoot.WithCompletion(anthropic.New()),
		hoot.WithConnectors(
			mcpclient.Descriptor{Name: "math", Command: "mathserver"},
		),
		hoot.WithHooks(events.Logging(slog.Default())),
	)
	if err != nil {
		return err
	}
	if err := o.Start(ctx); err != nil {
		return err
	}
	defer o.Stop()

	history, err := o.ProcessQuery(ctx, "What is 2 + 3?")

# Query Processing

Each query runs as a chain of turns. A turn sends the history to the model, reduces the streamed
answer into text and at most one capability request, and commits the text to the history.
When the model asks for a capability it is executed, its result is appended to the history in the
form

	Tool result returned for [<name>]: <output>

and another turn starts. After WithMaxDepth executions no more capabilities are offered. A model
that keeps asking anyway gets an explicit instruction to answer and one last request without
capabilities.

Completion requests that fail with a transient error are retried with exponential backoff, see
package retry. Any other failure aborts the query: the partial text is kept, an apology is
appended and a *TurnError is returned.

# Observation

Progress is reported through events.Hook. The events package ships a slog backed hook and
package natshook publishes every event to NATS subjects.
*/
package hoot
