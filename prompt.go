package hoot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casualjim/hoot/messages"
)

// Preamble is prepended to every user query. It tells the model how to read capability results
// in the history and when to stop asking for more.
const Preamble = `Answer the user's query below. You may call the available tools when they help.
A message of the form "` + messages.ToolResultPrefix + `<tool name>]: <result>" means that tool has already been called and returned <result>. Never call a tool again to obtain a result that is already in the conversation.
Once you have enough information, answer directly without calling any more tools.

Query: `

// HaltInstruction is sent when the model keeps asking for capabilities after the limit was reached.
const HaltInstruction = "The tool call limit for this query has been reached and no more tools can be called. " +
	"Answer the query now, using only the information already present in this conversation."

func withPreamble(query string) string {
	return Preamble + strings.TrimSpace(query)
}

// apology renders the message shown to the user when a query is aborted.
func apology(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCapability):
		return fmt.Sprintf("Sorry, I tried to use a tool that is not available (%v).", err)
	case errors.Is(err, ErrCapabilityFailed):
		return fmt.Sprintf("Sorry, a tool failed while working on your request (%v).", err)
	default:
		return fmt.Sprintf("Sorry, I could not complete your request (%v).", err)
	}
}
