package reducer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/provider"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	events.Nop
	mu     sync.Mutex
	events []events.StreamEvent
}

func (c *collector) OnStreamEvent(_ context.Context, ev events.StreamEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) texts() []string {
	var out []string
	for _, ev := range c.events {
		if tf, ok := ev.(events.TextFragment); ok {
			out = append(out, tf.Text)
		}
	}
	return out
}

func (c *collector) kinds() []string {
	var out []string
	for _, ev := range c.events {
		switch e := ev.(type) {
		case events.TextFragment:
			out = append(out, "text")
		case events.CapabilityStart:
			out = append(out, "start:"+e.Name)
		case events.CapabilityArgChunk:
			out = append(out, "arg")
		case events.TurnComplete:
			out = append(out, "done:"+string(e.StopReason))
		case events.Unknown:
			out = append(out, "unknown:"+e.Kind)
		}
	}
	return out
}

func stream(evs ...provider.StreamEvent) <-chan provider.StreamEvent {
	ch := make(chan provider.StreamEvent, len(evs))
	for _, ev := range evs {
		ch <- ev
	}
	close(ch)
	return ch
}

func reduce(t *testing.T, evs ...provider.StreamEvent) (Outcome, *collector, error) {
	t.Helper()
	c := &collector{}
	out, err := New(c, nil).Reduce(context.Background(), uuid.New(), uuid.New(), stream(evs...))
	return out, c, err
}

func TestReduce_TextOnly(t *testing.T) {
	out, c, err := reduce(t,
		provider.BlockStart{Index: 0, Type: provider.BlockText},
		provider.TextDelta{Index: 0, Text: "Hi"},
		provider.TextDelta{Index: 0, Text: " there"},
		provider.BlockStop{Index: 0},
		provider.TurnEnd{StopReason: provider.StopEndTurn},
	)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out.Text)
	assert.Equal(t, events.NaturalStop, out.StopReason)
	assert.Equal(t, provider.StopEndTurn, out.RawStopReason)
	assert.Nil(t, out.Call)
	assert.Equal(t, []string{"Hi", " there"}, c.texts())
	assert.Equal(t, []string{"text", "text", "done:natural_stop"}, c.kinds())
}

func TestReduce_CapabilityFragments(t *testing.T) {
	out, c, err := reduce(t,
		provider.BlockStart{Index: 0, Type: provider.BlockText},
		provider.TextDelta{Index: 0, Text: "Let me add."},
		provider.BlockStop{Index: 0},
		provider.BlockStart{Index: 1, Type: provider.BlockToolUse, ID: "toolu_1", Name: "add"},
		provider.InputDelta{Index: 1, PartialJSON: `{"a":`},
		provider.InputDelta{Index: 1, PartialJSON: `1,"b":2}`},
		provider.BlockStop{Index: 1},
		provider.TurnEnd{StopReason: provider.StopToolUse},
	)
	require.NoError(t, err)
	assert.Equal(t, events.CapabilityRequested, out.StopReason)
	assert.Equal(t, "Let me add.", out.Text)
	require.NotNil(t, out.Call)
	assert.Equal(t, "add", out.Call.Name)
	assert.Equal(t, "toolu_1", out.Call.ID)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, out.Call.Arguments)
	assert.Equal(t, `{"a":1,"b":2}`, out.Call.Raw)
	assert.Equal(t, []string{"text", "start:add", "arg", "arg", "done:capability_requested"}, c.kinds())
}

func TestReduce_EmptyArgumentsAreEmptyObject(t *testing.T) {
	out, _, err := reduce(t,
		provider.BlockStart{Index: 0, Type: provider.BlockToolUse, ID: "call_1", Name: "now"},
		provider.BlockStop{Index: 0},
		provider.TurnEnd{StopReason: provider.StopToolCalls},
	)
	require.NoError(t, err)
	require.NotNil(t, out.Call)
	assert.Equal(t, map[string]any{}, out.Call.Arguments)
	assert.Equal(t, events.CapabilityRequested, out.StopReason)
}

func TestReduce_MalformedArguments(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"truncated", `{"a":1`},
		{"array", `[1,2]`},
		{"scalar", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, c, err := reduce(t,
				provider.BlockStart{Index: 0, Type: provider.BlockToolUse, Name: "add"},
				provider.InputDelta{Index: 0, PartialJSON: tt.payload},
				provider.BlockStop{Index: 0},
				provider.TurnEnd{StopReason: provider.StopToolUse},
			)
			require.ErrorIs(t, err, ErrMalformedArguments)
			assert.ErrorContains(t, err, "add")
			assert.Nil(t, out.Call)
			assert.Contains(t, c.kinds(), "done:capability_requested")
		})
	}
}

func TestReduce_UnknownEventsAreNotFatal(t *testing.T) {
	out, c, err := reduce(t,
		provider.Unknown{Type: "ping", Raw: `{"type":"ping"}`},
		provider.BlockStart{Index: 0, Type: "thinking"},
		provider.TextDelta{Index: 0, Text: "ok"},
		provider.InputDelta{Index: 5, PartialJSON: `{}`},
		provider.TurnEnd{StopReason: provider.StopEndTurn},
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Equal(t, []string{
		"unknown:ping",
		"unknown:block_start:thinking",
		"text",
		"unknown:orphan_input_delta",
		"done:natural_stop",
	}, c.kinds())
}

func TestReduce_OnlyFirstCapabilityHonored(t *testing.T) {
	out, c, err := reduce(t,
		provider.BlockStart{Index: 0, Type: provider.BlockToolUse, Name: "add"},
		provider.InputDelta{Index: 0, PartialJSON: `{"a":1,"b":2}`},
		provider.BlockStop{Index: 0},
		provider.BlockStart{Index: 1, Type: provider.BlockToolUse, Name: "multiply"},
		provider.InputDelta{Index: 1, PartialJSON: `{"a":3}`},
		provider.BlockStop{Index: 1},
		provider.TurnEnd{StopReason: provider.StopToolUse},
	)
	require.NoError(t, err)
	require.NotNil(t, out.Call)
	assert.Equal(t, "add", out.Call.Name)
	assert.Equal(t, `{"a":1,"b":2}`, out.Call.Raw)
	assert.Equal(t, []string{"start:add", "arg", "unknown:additional_capability", "done:capability_requested"}, c.kinds())
}

func TestReduce_StopReasonInference(t *testing.T) {
	t.Run("capability without turn end", func(t *testing.T) {
		out, _, err := reduce(t,
			provider.BlockStart{Index: 0, Type: provider.BlockToolUse, Name: "now"},
			provider.BlockStop{Index: 0},
		)
		require.NoError(t, err)
		assert.Equal(t, events.CapabilityRequested, out.StopReason)
		assert.Empty(t, out.RawStopReason)
	})

	t.Run("text without turn end", func(t *testing.T) {
		out, _, err := reduce(t, provider.TextDelta{Index: 0, Text: "hi"})
		require.NoError(t, err)
		assert.Equal(t, events.NaturalStop, out.StopReason)
	})

	t.Run("tool stop without capability block", func(t *testing.T) {
		out, _, err := reduce(t,
			provider.TextDelta{Index: 0, Text: "hi"},
			provider.TurnEnd{StopReason: provider.StopToolUse},
		)
		require.NoError(t, err)
		assert.Equal(t, events.NaturalStop, out.StopReason)
		assert.Nil(t, out.Call)
	})

	t.Run("natural stop with capability block", func(t *testing.T) {
		out, _, err := reduce(t,
			provider.BlockStart{Index: 0, Type: provider.BlockToolUse, Name: "now"},
			provider.BlockStop{Index: 0},
			provider.TurnEnd{StopReason: provider.StopEndTurn},
		)
		require.NoError(t, err)
		assert.Equal(t, events.NaturalStop, out.StopReason)
		assert.Nil(t, out.Call)
	})
}

func TestReduce_ErrorEventAborts(t *testing.T) {
	boom := errors.New("connection reset")
	ch := make(chan provider.StreamEvent)
	go func() {
		defer close(ch)
		ch <- provider.TextDelta{Index: 0, Text: "partial"}
		ch <- provider.Error{Err: boom}
		// never read by the reducer, must be drained
		ch <- provider.TextDelta{Index: 0, Text: "ignored"}
	}()

	out, err := New(nil, nil).Reduce(context.Background(), uuid.New(), uuid.New(), ch)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", out.Text)
	assert.Nil(t, out.Call)
}

func TestReduce_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan provider.StreamEvent)
	defer close(ch)

	_, err := New(nil, nil).Reduce(ctx, uuid.New(), uuid.New(), ch)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReduce_EventsCarryIdentifiers(t *testing.T) {
	run, turnID := uuid.New(), uuid.New()
	c := &collector{}
	_, err := New(c, nil).Reduce(context.Background(), run, turnID, stream(
		provider.TextDelta{Index: 0, Text: "x"},
		provider.TurnEnd{StopReason: provider.StopEndTurn},
	))
	require.NoError(t, err)
	require.Len(t, c.events, 2)
	for _, ev := range c.events {
		assert.Equal(t, run, ev.Run())
	}
	tf := c.events[0].(events.TextFragment)
	assert.Equal(t, turnID, tf.TurnID)
	assert.False(t, tf.Timestamp.IsZero())
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments("  ")
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = ParseArguments(`{"nested":{"x":[1,"two"]}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nested": map[string]any{"x": []any{float64(1), "two"}}}, args)

	_, err = ParseArguments(`null`)
	require.Error(t, err)
}
