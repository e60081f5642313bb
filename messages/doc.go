// Package messages defines the conversation history shared between the orchestrator and the
// completion providers.
//
// Design decisions:
//   - Text only: every entry carries plain text content, multi-modal content is not modelled
//   - Two roles: user and assistant, the orchestrator never produces system entries in history
//   - Distinguishable tool results: a capability result is an assistant entry with Kind
//     KindToolResult and content framed as "Tool result returned for [<name>]: <content>", so
//     re-submitting history to the model never looks like an unanswered request
//   - Append only: a History hands out copies and never rewrites an entry after it was added
//
// Key concepts:
//   - Message: a single entry with role, kind, content and bookkeeping ids
//   - History: the ordered, append-only sequence of messages owned by one orchestrator
//
// Example usage:
//
//	hist := messages.NewHistory()
//	hist.Add(messages.User("add 2 and 3"))
//	hist.Add(messages.ToolResult("add", "5"))
//	for msg := range hist.All() {
//	    fmt.Println(msg.Role, msg.Content)
//	}
package messages
