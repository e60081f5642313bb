package events

import (
	"fmt"
	"time"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/tool"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Observation types that are not stream events.
const (
	TypeUserPrompt       = typePrompt
	TypeToolCall         = typeToolCall
	TypeToolResult       = typeToolResult
	TypeAssistantMessage = typeAssistant
	TypeError            = typeError
)

// TypeOf returns the type tag of an encoded observation.
func TypeOf(data []byte) string {
	return gjson.GetBytes(data, "type").String()
}

// RunOf returns the run id of an encoded observation.
func RunOf(data []byte) (uuid.UUID, error) {
	return uuid.Parse(gjson.GetBytes(data, "run_id").String())
}

// EncodeStreamEvent renders a stream event in its tagged JSON form.
func EncodeStreamEvent(ev StreamEvent) ([]byte, error) {
	switch e := ev.(type) {
	case TextFragment:
		return e.MarshalJSON()
	case CapabilityStart:
		return e.MarshalJSON()
	case CapabilityArgChunk:
		return e.MarshalJSON()
	case TurnComplete:
		return e.MarshalJSON()
	case Unknown:
		return e.MarshalJSON()
	default:
		return nil, fmt.Errorf("unsupported stream event %T", ev)
	}
}

// EncodeMessage renders a history entry tagged with the observation type it was reported under.
func EncodeMessage(typ string, msg messages.Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(b, "type", typ)
}

// EncodeToolCall renders a capability invocation. The arguments are embedded as a JSON object.
func EncodeToolCall(runID uuid.UUID, call tool.Call) ([]byte, error) {
	result, err := marshalHeader(typeToolCall, Header{RunID: runID, Timestamp: strfmt.DateTime(time.Now())})
	if err != nil {
		return nil, err
	}
	if result, err = setFields(result, "id", call.ID, "name", call.Name); err != nil {
		return nil, err
	}
	args := call.Raw
	if !gjson.Valid(args) {
		b, err := json.Marshal(call.Arguments)
		if err != nil {
			return nil, err
		}
		args = string(b)
	}
	return sjson.SetRawBytes(result, "arguments", []byte(args))
}
