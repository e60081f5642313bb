/*
Package openai implements the provider.Provider interface for OpenAI compatible chat completion APIs.

The chat completion stream has no content blocks, it interleaves content deltas and tool call
deltas. The adapter synthesizes the block structure the rest of the system works with: text is
reported as block 0 and the tool call at position i as block i+1. Blocks are closed when the
finish reason arrives, which is then reported as the turn's stop reason.

	p := openai.New(option.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
	events, err := p.ChatCompletion(ctx, provider.CompletionParams{
	    Model:   openai.DefaultModel,
	    History: history.Messages(),
	})

The SDK's own retries are disabled, retrying is done around ChatCompletion so that it is
observable.
*/
package openai
