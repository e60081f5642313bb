package events

import (
	"context"
	"log/slog"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/tool"
	"github.com/google/uuid"
)

// Logging returns a Hook that records capability traffic, unknown stream events and errors.
// A nil logger uses slog.Default().
func Logging(logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingHook{logger: logger.With(slogx.LoggerName("events"))}
}

type loggingHook struct {
	Nop
	logger *slog.Logger
}

func (l *loggingHook) OnStreamEvent(ctx context.Context, ev StreamEvent) {
	switch e := ev.(type) {
	case Unknown:
		l.logger.WarnContext(ctx, "unrecognized stream event",
			slog.String("kind", e.Kind),
			slog.String("run_id", e.RunID.String()),
		)
	case TurnComplete:
		l.logger.DebugContext(ctx, "turn complete",
			slog.String("stop_reason", string(e.StopReason)),
			slog.String("raw", e.Raw),
			slog.String("run_id", e.RunID.String()),
		)
	}
}

func (l *loggingHook) OnToolCall(ctx context.Context, runID uuid.UUID, call tool.Call) {
	l.logger.InfoContext(ctx, "calling tool",
		slogx.Capability(call.Name),
		slog.Any("arguments", call.Arguments),
		slog.String("run_id", runID.String()),
	)
}

func (l *loggingHook) OnToolResult(ctx context.Context, msg messages.Message) {
	l.logger.InfoContext(ctx, "tool returned",
		slogx.Capability(msg.Tool),
		slog.String("output", msg.ToolOutput),
		slog.String("run_id", msg.RunID.String()),
	)
}

func (l *loggingHook) OnError(ctx context.Context, err Error) {
	l.logger.ErrorContext(ctx, "turn aborted",
		slogx.Error(err.Err),
		slog.String("run_id", err.RunID.String()),
	)
}
