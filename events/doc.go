// Package events defines the semantic observations produced while a query is processed,
// and the hooks that receive them.
//
// The stream reducer turns raw provider events into a closed set of StreamEvent variants:
//
//   - TextFragment: a piece of model text, surfaced as soon as it arrives
//   - CapabilityStart: the model opened a capability request
//   - CapabilityArgChunk: a raw fragment of the capability's argument payload
//   - TurnComplete: the stream ended, with a NaturalStop or CapabilityRequested reason
//   - Unknown: anything not understood, surfaced for forward compatibility
//
// Every event carries the run and turn it belongs to and when it happened. Events have a JSON
// form tagged with a "type" field so they can be mirrored to a broker and decoded on the other
// side with FromJSON:
//
//	data, err := json.Marshal(events.TextFragment{Header: events.Header{RunID: run, TurnID: turn}, Text: "Hi"})
//	// {"type":"text","run_id":"...","turn_id":"...","text":"Hi"}
//	ev, err := events.FromJSON(data)
//
// A Hook observes a whole query: the user prompt, every stream event, capability calls and
// their results, the committed assistant messages and errors. Hooks are notified synchronously
// from the orchestrator goroutine, so an implementation that does slow work must hand it off.
// Hooks never influence control flow.
package events
