// Package reducer folds one completion stream into text and at most one capability request.
//
// The reducer is a small state machine over content blocks. A block is opened by
// provider.BlockStart, fed by TextDelta or InputDelta fragments and closed by BlockStop.
// Text fragments are forwarded to the hook as they arrive and collected into one running
// buffer. The argument payload of a capability block is concatenated in arrival order and
// parsed once, after the stream has ended.
//
// Only the first capability block of a turn is honored, the model can only have one
// outstanding capability request per turn. Later ones are surfaced as Unknown observations.
package reducer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/provider"
	"github.com/casualjim/hoot/tool"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ErrMalformedArguments is returned when the accumulated argument payload is not a JSON object.
var ErrMalformedArguments = errors.New("malformed capability arguments")

// Outcome is the result of reducing one stream.
type Outcome struct {
	// Text is the concatenation of all text fragments of the turn.
	Text string
	// Call is the capability request, only set when StopReason is CapabilityRequested.
	Call *tool.Call
	// StopReason is the normalized stop reason.
	StopReason events.StopReason
	// RawStopReason is the stop reason the API reported, empty when it never did.
	RawStopReason string
}

// Reducer reduces completion streams into outcomes, reporting progress to a hook.
type Reducer struct {
	hook   events.Hook
	logger *slog.Logger
}

// New creates a reducer. A nil hook discards events and a nil logger uses slog.Default().
func New(hook events.Hook, logger *slog.Logger) *Reducer {
	if hook == nil {
		hook = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{hook: hook, logger: logger.With(slogx.LoggerName("reducer"))}
}

type blockState int

const (
	idle blockState = iota
	accumulatingText
	accumulatingCapability
)

type turn struct {
	r      *Reducer
	ctx    context.Context
	header events.Header

	state blockState

	text strings.Builder

	capIndex int
	capID    string
	capName  string
	args     strings.Builder
	hasCap   bool

	ignored map[int]struct{}

	stopReason string
	ended      bool
}

// Reduce consumes stream until it is closed and returns the outcome of the turn.
// When the stream reports an error, or ctx is cancelled, the partial outcome is returned with
// the error and the rest of the stream is drained in the background.
func (r *Reducer) Reduce(ctx context.Context, runID, turnID uuid.UUID, stream <-chan provider.StreamEvent) (Outcome, error) {
	t := &turn{
		r:       r,
		ctx:     ctx,
		header:  events.Header{RunID: runID, TurnID: turnID},
		ignored: make(map[int]struct{}),
	}

	for {
		select {
		case <-ctx.Done():
			go drain(stream)
			return t.partial(), ctx.Err()
		case ev, ok := <-stream:
			if !ok {
				return t.finish()
			}
			if err := t.apply(ev); err != nil {
				go drain(stream)
				return t.partial(), err
			}
		}
	}
}

func drain(stream <-chan provider.StreamEvent) {
	for range stream { //nolint:revive
	}
}

func (t *turn) emit(ev events.StreamEvent) {
	t.r.hook.OnStreamEvent(t.ctx, ev)
}

func (t *turn) stamp() events.Header {
	h := t.header
	h.Timestamp = strfmt.DateTime(time.Now())
	return h
}

func (t *turn) apply(ev provider.StreamEvent) error {
	switch e := ev.(type) {
	case provider.BlockStart:
		switch e.Type {
		case provider.BlockToolUse:
			if t.hasCap {
				t.ignored[e.Index] = struct{}{}
				t.state = idle
				t.r.logger.WarnContext(t.ctx, "ignoring additional capability request in turn",
					slogx.Capability(e.Name),
					slog.String("honored", t.capName),
				)
				t.emit(events.Unknown{Header: t.stamp(), Kind: "additional_capability", Raw: e.Name})
				return nil
			}
			t.hasCap = true
			t.capIndex = e.Index
			t.capID = e.ID
			t.capName = e.Name
			t.state = accumulatingCapability
			t.emit(events.CapabilityStart{Header: t.stamp(), ID: e.ID, Name: e.Name})
		case provider.BlockText:
			t.state = accumulatingText
		default:
			t.state = idle
			t.unknown("block_start:"+string(e.Type), "")
		}

	case provider.TextDelta:
		if e.Text == "" {
			return nil
		}
		t.text.WriteString(e.Text)
		t.emit(events.TextFragment{Header: t.stamp(), Text: e.Text})

	case provider.InputDelta:
		if _, skip := t.ignored[e.Index]; skip {
			return nil
		}
		if !t.hasCap || e.Index != t.capIndex {
			t.unknown("orphan_input_delta", e.PartialJSON)
			return nil
		}
		if e.PartialJSON == "" {
			return nil
		}
		t.args.WriteString(e.PartialJSON)
		t.emit(events.CapabilityArgChunk{Header: t.stamp(), Fragment: e.PartialJSON})

	case provider.BlockStop:
		if t.state == accumulatingCapability && e.Index == t.capIndex {
			t.r.logger.DebugContext(t.ctx, "capability request complete",
				slogx.Capability(t.capName),
				slog.Int("payload_bytes", t.args.Len()),
			)
		}
		t.state = idle

	case provider.TurnEnd:
		t.ended = true
		t.stopReason = e.StopReason

	case provider.Unknown:
		t.unknown(e.Type, e.Raw)

	case provider.Error:
		return e.Err

	default:
		t.unknown(fmt.Sprintf("%T", ev), "")
	}
	return nil
}

func (t *turn) unknown(kind, raw string) {
	t.r.logger.WarnContext(t.ctx, "unrecognized stream event", slog.String("kind", kind))
	t.emit(events.Unknown{Header: t.stamp(), Kind: kind, Raw: raw})
}

func (t *turn) partial() Outcome {
	return Outcome{Text: t.text.String(), StopReason: events.NaturalStop, RawStopReason: t.stopReason}
}

func (t *turn) finish() (Outcome, error) {
	out := t.partial()

	switch {
	case !t.ended:
		// the stream closed without a stop reason, infer it from what was seen
		if t.hasCap {
			out.StopReason = events.CapabilityRequested
		}
	case provider.RequestsCapability(t.stopReason):
		if t.hasCap {
			out.StopReason = events.CapabilityRequested
		} else {
			t.r.logger.WarnContext(t.ctx, "capability stop without a capability request", slog.String("stop_reason", t.stopReason))
		}
	case t.hasCap:
		t.r.logger.WarnContext(t.ctx, "dropping capability request, turn ended without requesting it",
			slogx.Capability(t.capName),
			slog.String("stop_reason", t.stopReason),
		)
	}

	t.emit(events.TurnComplete{Header: t.stamp(), StopReason: out.StopReason, Raw: t.stopReason})

	if out.StopReason != events.CapabilityRequested {
		return out, nil
	}

	raw := t.args.String()
	args, err := ParseArguments(raw)
	if err != nil {
		return out, fmt.Errorf("%w for %s: %w", ErrMalformedArguments, t.capName, err)
	}
	out.Call = &tool.Call{
		ID:        t.capID,
		Name:      t.capName,
		Arguments: args,
		Raw:       raw,
	}
	return out, nil
}

// ParseArguments parses a fully accumulated argument payload.
// An empty payload is the empty object.
func ParseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid json: %q", raw)
	}
	if !gjson.Parse(raw).IsObject() {
		return nil, fmt.Errorf("expected an object, got %q", raw)
	}
	args := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}
