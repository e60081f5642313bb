package events

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// StopReason is the normalized reason a completion stream ended.
type StopReason string

const (
	NaturalStop         StopReason = "natural_stop"
	CapabilityRequested StopReason = "capability_requested"
)

const (
	typeText       = "text"
	typeCapStart   = "capability_start"
	typeCapArg     = "capability_arg"
	typeTurnDone   = "turn_complete"
	typeUnknown    = "unknown"
	typeError      = "error"
	typeToolCall   = "tool_call"
	typeToolResult = "tool_result"
	typePrompt     = "user_prompt"
	typeAssistant  = "assistant_message"
)

// StreamEvent is the closed set of semantic events produced by the stream reducer.
type StreamEvent interface {
	streamEvent()
	Run() uuid.UUID
}

// Header is shared by every event.
type Header struct {
	RunID     uuid.UUID       `json:"run_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (h Header) Run() uuid.UUID { return h.RunID }

// TextFragment is a piece of model text.
type TextFragment struct {
	Header
	Text string `json:"text"`
}

func (TextFragment) streamEvent() {}

// CapabilityStart marks the opening of a capability request.
type CapabilityStart struct {
	Header
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (CapabilityStart) streamEvent() {}

// CapabilityArgChunk is a raw fragment of a capability's argument payload.
type CapabilityArgChunk struct {
	Header
	Fragment string `json:"fragment"`
}

func (CapabilityArgChunk) streamEvent() {}

// TurnComplete ends a stream.
type TurnComplete struct {
	Header
	StopReason StopReason `json:"stop_reason"`
	// Raw is the stop reason exactly as the completion API reported it.
	Raw string `json:"raw,omitempty"`
}

func (TurnComplete) streamEvent() {}

// Unknown is an event that was not understood.
type Unknown struct {
	Header
	Kind string `json:"kind"`
	Raw  string `json:"raw,omitempty"`
}

func (Unknown) streamEvent() {}

func marshalHeader(typ string, h Header) ([]byte, error) {
	result := []byte(`{}`)
	var err error
	if result, err = sjson.SetBytes(result, "type", typ); err != nil {
		return nil, err
	}
	if result, err = sjson.SetBytes(result, "run_id", h.RunID.String()); err != nil {
		return nil, err
	}
	if result, err = sjson.SetBytes(result, "turn_id", h.TurnID.String()); err != nil {
		return nil, err
	}
	if !h.Timestamp.IsZero() {
		if result, err = sjson.SetBytes(result, "timestamp", h.Timestamp.String()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func unmarshalHeader(typ string, data []byte, h *Header) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != typ {
		return fmt.Errorf("missing or invalid type, expected '%s'", typ)
	}

	runID := gjson.GetBytes(data, "run_id")
	if !runID.Exists() {
		return fmt.Errorf("missing required field 'run_id'")
	}
	if err := h.RunID.UnmarshalText([]byte(runID.String())); err != nil {
		return fmt.Errorf("invalid run_id: %w", err)
	}

	if turnID := gjson.GetBytes(data, "turn_id"); turnID.Exists() {
		if err := h.TurnID.UnmarshalText([]byte(turnID.String())); err != nil {
			return fmt.Errorf("invalid turn_id: %w", err)
		}
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := h.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}
	return nil
}

func setFields(result []byte, kv ...string) ([]byte, error) {
	var err error
	for i := 0; i+1 < len(kv); i += 2 {
		if result, err = sjson.SetBytes(result, kv[i], kv[i+1]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// MarshalJSON implements custom JSON marshaling for TextFragment
func (e TextFragment) MarshalJSON() ([]byte, error) {
	result, err := marshalHeader(typeText, e.Header)
	if err != nil {
		return nil, err
	}
	return setFields(result, "text", e.Text)
}

// UnmarshalJSON implements custom JSON unmarshaling for TextFragment
func (e *TextFragment) UnmarshalJSON(data []byte) error {
	if err := unmarshalHeader(typeText, data, &e.Header); err != nil {
		return err
	}
	e.Text = gjson.GetBytes(data, "text").String()
	return nil
}

// MarshalJSON implements custom JSON marshaling for CapabilityStart
func (e CapabilityStart) MarshalJSON() ([]byte, error) {
	result, err := marshalHeader(typeCapStart, e.Header)
	if err != nil {
		return nil, err
	}
	if e.ID != "" {
		if result, err = setFields(result, "id", e.ID); err != nil {
			return nil, err
		}
	}
	return setFields(result, "name", e.Name)
}

// UnmarshalJSON implements custom JSON unmarshaling for CapabilityStart
func (e *CapabilityStart) UnmarshalJSON(data []byte) error {
	if err := unmarshalHeader(typeCapStart, data, &e.Header); err != nil {
		return err
	}
	name := gjson.GetBytes(data, "name")
	if !name.Exists() {
		return fmt.Errorf("missing required field 'name'")
	}
	e.Name = name.String()
	e.ID = gjson.GetBytes(data, "id").String()
	return nil
}

// MarshalJSON implements custom JSON marshaling for CapabilityArgChunk
func (e CapabilityArgChunk) MarshalJSON() ([]byte, error) {
	result, err := marshalHeader(typeCapArg, e.Header)
	if err != nil {
		return nil, err
	}
	return setFields(result, "fragment", e.Fragment)
}

// UnmarshalJSON implements custom JSON unmarshaling for CapabilityArgChunk
func (e *CapabilityArgChunk) UnmarshalJSON(data []byte) error {
	if err := unmarshalHeader(typeCapArg, data, &e.Header); err != nil {
		return err
	}
	e.Fragment = gjson.GetBytes(data, "fragment").String()
	return nil
}

// MarshalJSON implements custom JSON marshaling for TurnComplete
func (e TurnComplete) MarshalJSON() ([]byte, error) {
	result, err := marshalHeader(typeTurnDone, e.Header)
	if err != nil {
		return nil, err
	}
	if result, err = setFields(result, "stop_reason", string(e.StopReason)); err != nil {
		return nil, err
	}
	if e.Raw != "" {
		return setFields(result, "raw", e.Raw)
	}
	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for TurnComplete
func (e *TurnComplete) UnmarshalJSON(data []byte) error {
	if err := unmarshalHeader(typeTurnDone, data, &e.Header); err != nil {
		return err
	}
	reason := gjson.GetBytes(data, "stop_reason")
	switch StopReason(reason.String()) {
	case NaturalStop, CapabilityRequested:
		e.StopReason = StopReason(reason.String())
	default:
		return fmt.Errorf("invalid stop_reason: %q", reason.String())
	}
	e.Raw = gjson.GetBytes(data, "raw").String()
	return nil
}

// MarshalJSON implements custom JSON marshaling for Unknown
func (e Unknown) MarshalJSON() ([]byte, error) {
	result, err := marshalHeader(typeUnknown, e.Header)
	if err != nil {
		return nil, err
	}
	if result, err = setFields(result, "kind", e.Kind); err != nil {
		return nil, err
	}
	if e.Raw != "" {
		return setFields(result, "raw", e.Raw)
	}
	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Unknown
func (e *Unknown) UnmarshalJSON(data []byte) error {
	if err := unmarshalHeader(typeUnknown, data, &e.Header); err != nil {
		return err
	}
	e.Kind = gjson.GetBytes(data, "kind").String()
	e.Raw = gjson.GetBytes(data, "raw").String()
	return nil
}

// FromJSON decodes a stream event from its tagged JSON form.
func FromJSON(data []byte) (StreamEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}
	switch typ := gjson.GetBytes(data, "type").String(); typ {
	case typeText:
		var e TextFragment
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case typeCapStart:
		var e CapabilityStart
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case typeCapArg:
		var e CapabilityArgChunk
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case typeTurnDone:
		var e TurnComplete
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case typeUnknown:
		var e Unknown
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", typ)
	}
}
