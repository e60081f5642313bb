package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestsCapability(t *testing.T) {
	tests := []struct {
		reason string
		want   bool
	}{
		{StopToolUse, true},
		{StopToolCalls, true},
		{StopEndTurn, false},
		{StopStop, false},
		{StopMaxTokens, false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, RequestsCapability(tt.reason))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("connection reset")
	ev := Error{Err: base}
	assert.ErrorIs(t, ev, base)
	assert.Equal(t, "stream error: connection reset", ev.Error())
}

func TestProviderFunc(t *testing.T) {
	var got CompletionParams
	prov := ProviderFunc(func(_ context.Context, params CompletionParams) (<-chan StreamEvent, error) {
		got = params
		ch := make(chan StreamEvent, 1)
		ch <- TurnEnd{StopReason: StopEndTurn}
		close(ch)
		return ch, nil
	})

	events, err := prov.ChatCompletion(context.Background(), CompletionParams{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "m", got.Model)

	var collected []StreamEvent
	for ev := range events {
		collected = append(collected, ev)
	}
	assert.Equal(t, []StreamEvent{TurnEnd{StopReason: StopEndTurn}}, collected)
}
