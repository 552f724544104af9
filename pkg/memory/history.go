// Package memory holds conversation state: the bounded message history and
// the optional embedding-backed semantic memory used for retrieval.
package memory

import (
	"fmt"
	"sync"

	"github.com/angilabs/angi/pkg/model"
)

// History is a bounded conversation transcript. When the limit is exceeded,
// the oldest user/assistant messages are dropped; system messages are
// always preserved.
type History struct {
	mu       sync.Mutex
	max      int
	messages []model.Message
}

// NewHistory creates a history keeping at most max messages. max <= 0
// disables trimming.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Add appends a role/content pair.
func (h *History) Add(role, content string) {
	h.AddMessage(model.Message{Role: role, Content: content})
}

// AddMessage appends a full message and trims if needed.
func (h *History) AddMessage(msg model.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	h.trim()
}

func (h *History) trim() {
	if h.max <= 0 || len(h.messages) <= h.max {
		return
	}
	var system, other []model.Message
	for _, msg := range h.messages {
		if msg.Role == model.RoleSystem {
			system = append(system, msg)
		} else {
			other = append(other, msg)
		}
	}
	keep := h.max - len(system)
	if keep < 0 {
		keep = 0
	}
	if len(other) > keep {
		other = other[len(other)-keep:]
	}
	h.messages = append(system, other...)
}

// Messages returns a copy of the transcript.
func (h *History) Messages() []model.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.Message(nil), h.messages...)
}

// Len reports the number of stored messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear drops the whole transcript.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// Summary describes the current context in one line.
func (h *History) Summary() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return "No conversation history."
	}
	return fmt.Sprintf("Conversation has %d messages.", len(h.messages))
}
