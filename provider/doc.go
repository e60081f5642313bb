// Package provider is the boundary to streaming completion APIs (Anthropic, OpenAI, ...).
//
// A Provider turns a conversation history and a capability catalog into a channel of raw stream
// events. The events mirror the block structure the completion APIs use on the wire:
//
//   - BlockStart opens a content block, either text or a capability (tool_use) request
//   - TextDelta and InputDelta carry fragments for the open block
//   - BlockStop closes a block
//   - TurnEnd carries the stop reason reported by the API
//   - Unknown carries anything the adapter did not understand
//   - Error reports a failure after the stream was opened
//
// Request failures that happen before any event is produced are returned synchronously from
// ChatCompletion so the caller can retry them. Once the channel is returned, failures arrive as
// an Error event and the channel is closed.
//
// Example usage:
//
//	events, err := prov.ChatCompletion(ctx, provider.CompletionParams{
//	    RunID:   uuid.Must(uuid.NewV7()),
//	    Model:   "claude-3-5-sonnet-latest",
//	    History: history.Messages(),
//	    Tools:   registry.AllCapabilities(),
//	})
//	if err != nil {
//	    return err
//	}
//	for event := range events {
//	    switch e := event.(type) {
//	    case provider.TextDelta:
//	        fmt.Print(e.Text)
//	    case provider.Error:
//	        return e.Err
//	    }
//	}
//
// The reduction of these events into text and capability calls lives in the orchestrator, the
// adapters only translate wire formats.
package provider
