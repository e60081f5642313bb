package messages

import (
	"iter"
	"slices"
	"sync"

	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/google/uuid"
)

// History is the append-only conversation history of one session.
// It is safe for concurrent readers, the orchestrator is the only writer.
type History struct {
	id       uuid.UUID
	mu       sync.RWMutex
	messages []Message
}

// NewHistory creates an empty history with a fresh identifier.
func NewHistory() *History {
	return &History{
		id:       uuidx.New(),
		messages: make([]Message, 0),
	}
}

// ID returns the identifier of the session this history belongs to.
func (h *History) ID() uuid.UUID {
	return h.id
}

// Add appends messages in order.
func (h *History) Add(msgs ...Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Len returns the number of messages in the history.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Messages returns a copy of all messages.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.messages)
}

// Since returns a copy of the messages added at or after offset.
func (h *History) Since(offset int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(h.messages) {
		return nil
	}
	return slices.Clone(h.messages[offset:])
}

// Last returns the most recent message, if any.
func (h *History) Last() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// All iterates over a snapshot of the history.
func (h *History) All() iter.Seq[Message] {
	return slices.Values(h.Messages())
}

// Reset truncates the history, this is only done when a session ends.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = make([]Message, 0)
	h.id = uuidx.New()
}
