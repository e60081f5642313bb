// Package natshook mirrors orchestrator observations to NATS.
//
// Every observation is published as tagged JSON on "<subject>.<run id>", so a subscriber can follow
// one run or, with a wildcard, all of them.
package natshook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/tool"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix used when none is configured.
const DefaultSubject = "hoot.events"

var _ events.Hook = (*Hook)(nil)

// Hook publishes every observation it receives. Publishing is fire and forget, failures are logged.
type Hook struct {
	client  *nats.Conn
	subject string
	logger  *slog.Logger
}

// New creates a hook publishing below subject.
func New(client *nats.Conn, subject string) *Hook {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Hook{
		client:  client,
		subject: subject,
		logger:  slog.Default().With(slogx.LoggerName("natshook")),
	}
}

// Subject returns the subject observations of a run are published on.
func (h *Hook) Subject(runID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", h.subject, runID)
}

func (h *Hook) publish(ctx context.Context, runID uuid.UUID, data []byte, err error) {
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode observation", slogx.Error(err))
		return
	}
	if err := h.client.Publish(h.Subject(runID), data); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish observation", slogx.Error(err), slog.String("subject", h.Subject(runID)))
	}
}

func (h *Hook) OnUserPrompt(ctx context.Context, msg messages.Message) {
	data, err := events.EncodeMessage(events.TypeUserPrompt, msg)
	h.publish(ctx, msg.RunID, data, err)
}

func (h *Hook) OnStreamEvent(ctx context.Context, ev events.StreamEvent) {
	data, err := events.EncodeStreamEvent(ev)
	h.publish(ctx, ev.Run(), data, err)
}

func (h *Hook) OnToolCall(ctx context.Context, runID uuid.UUID, call tool.Call) {
	data, err := events.EncodeToolCall(runID, call)
	h.publish(ctx, runID, data, err)
}

func (h *Hook) OnToolResult(ctx context.Context, msg messages.Message) {
	data, err := events.EncodeMessage(events.TypeToolResult, msg)
	h.publish(ctx, msg.RunID, data, err)
}

func (h *Hook) OnAssistantMessage(ctx context.Context, msg messages.Message) {
	data, err := events.EncodeMessage(events.TypeAssistantMessage, msg)
	h.publish(ctx, msg.RunID, data, err)
}

func (h *Hook) OnError(ctx context.Context, e events.Error) {
	data, err := e.MarshalJSON()
	h.publish(ctx, e.RunID, data, err)
}

// Observation is a received observation.
type Observation struct {
	Subject string
	Type    string
	RunID   uuid.UUID
	Data    []byte
}

// Subscribe delivers observations published below subject to fn until ctx is done.
// Messages that are not valid observations are logged and skipped.
func Subscribe(ctx context.Context, client *nats.Conn, subject string, fn func(Observation)) error {
	if fn == nil {
		return fmt.Errorf("a callback is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}

	received := make(chan Observation, 64)
	sub, err := client.Subscribe(subject+".>", func(msg *nats.Msg) {
		runID, err := events.RunOf(msg.Data)
		if err != nil {
			slog.Warn("skipping malformed observation", slogx.Error(err), slog.String("subject", msg.Subject))
			return
		}
		select {
		case received <- Observation{Subject: msg.Subject, Type: events.TypeOf(msg.Data), RunID: runID, Data: msg.Data}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe", slogx.Error(err), slog.String("subject", subject))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case obs := <-received:
			fn(obs)
		}
	}
}
