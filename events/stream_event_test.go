package events

import (
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func header() Header {
	return Header{
		RunID:     uuid.New(),
		TurnID:    uuid.New(),
		Timestamp: strfmt.DateTime(time.Now().UTC().Truncate(time.Millisecond)),
	}
}

func TestTextFragmentJSON(t *testing.T) {
	h := header()
	ev := TextFragment{Header: h, Text: `say "hi"`}

	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(ev)
		require.NoError(t, err)

		result := gjson.ParseBytes(data)
		assert.Equal(t, "text", result.Get("type").String())
		assert.Equal(t, h.RunID.String(), result.Get("run_id").String())
		assert.Equal(t, h.TurnID.String(), result.Get("turn_id").String())
		assert.Equal(t, `say "hi"`, result.Get("text").String())
		assert.True(t, result.Get("timestamp").Exists())
	})

	t.Run("round trip", func(t *testing.T) {
		data, err := json.Marshal(ev)
		require.NoError(t, err)

		var decoded TextFragment
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, h.RunID, decoded.RunID)
		assert.Equal(t, h.TurnID, decoded.TurnID)
		assert.Equal(t, ev.Text, decoded.Text)
		assert.True(t, time.Time(h.Timestamp).Equal(time.Time(decoded.Timestamp)))
	})

	t.Run("wrong type", func(t *testing.T) {
		var decoded TextFragment
		err := decoded.UnmarshalJSON([]byte(`{"type":"unknown","run_id":"` + h.RunID.String() + `"}`))
		assert.ErrorContains(t, err, "expected 'text'")
	})

	t.Run("missing run id", func(t *testing.T) {
		var decoded TextFragment
		err := decoded.UnmarshalJSON([]byte(`{"type":"text","text":"x"}`))
		assert.ErrorContains(t, err, "run_id")
	})

	t.Run("invalid json", func(t *testing.T) {
		var decoded TextFragment
		assert.Error(t, decoded.UnmarshalJSON([]byte(`{"type":`)))
	})
}

func TestFromJSON(t *testing.T) {
	h := header()
	tests := []struct {
		name string
		ev   StreamEvent
	}{
		{"text", TextFragment{Header: h, Text: "Hi"}},
		{"capability start", CapabilityStart{Header: h, ID: "toolu_1", Name: "add"}},
		{"capability arg", CapabilityArgChunk{Header: h, Fragment: `{"a":`}},
		{"turn complete natural", TurnComplete{Header: h, StopReason: NaturalStop, Raw: "end_turn"}},
		{"turn complete capability", TurnComplete{Header: h, StopReason: CapabilityRequested}},
		{"unknown", Unknown{Header: h, Kind: "ping", Raw: `{"type":"ping"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ev)
			require.NoError(t, err)

			decoded, err := FromJSON(data)
			require.NoError(t, err)
			assert.IsType(t, tt.ev, decoded)
			assert.Equal(t, h.RunID, decoded.Run())

			again, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestFromJSON_Errors(t *testing.T) {
	_, err := FromJSON([]byte(`not json`))
	require.Error(t, err)

	_, err = FromJSON([]byte(`{"type":"bogus"}`))
	assert.ErrorContains(t, err, `unknown event type: "bogus"`)

	_, err = FromJSON([]byte(`{"type":"turn_complete","run_id":"` + uuid.NewString() + `","stop_reason":"eh"}`))
	assert.ErrorContains(t, err, "invalid stop_reason")

	_, err = FromJSON([]byte(`{"type":"capability_start","run_id":"` + uuid.NewString() + `"}`))
	assert.ErrorContains(t, err, "'name'")
}

func TestErrorJSON(t *testing.T) {
	runID := uuid.New()
	ev := Error{RunID: runID, Err: errors.New("unknown capability: z")}

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	result := gjson.ParseBytes(data)
	assert.Equal(t, "error", result.Get("type").String())
	assert.Equal(t, "unknown capability: z", result.Get("error").String())
	assert.False(t, result.Get("timestamp").Exists())

	var decoded Error
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, runID, decoded.RunID)
	assert.EqualError(t, decoded.Err, "unknown capability: z")

	base := errors.New("base")
	assert.ErrorIs(t, Error{Err: base}, base)
}
