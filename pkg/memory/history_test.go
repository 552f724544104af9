package memory

import (
	"fmt"
	"testing"

	"github.com/angilabs/angi/pkg/model"
)

func TestHistoryTrimKeepsSystemMessages(t *testing.T) {
	h := NewHistory(4)
	h.Add(model.RoleSystem, "you are a food assistant")
	for i := 0; i < 6; i++ {
		h.Add(model.RoleUser, fmt.Sprintf("question %d", i))
		h.Add(model.RoleAssistant, fmt.Sprintf("answer %d", i))
	}

	msgs := h.Messages()
	if len(msgs) != 4 {
		t.Fatalf("Len = %d, want 4", len(msgs))
	}
	if msgs[0].Role != model.RoleSystem {
		t.Fatalf("system message not preserved, first is %q", msgs[0].Role)
	}
	// The newest turns survive.
	if msgs[len(msgs)-1].Content != "answer 5" {
		t.Fatalf("last message = %q, want the newest answer", msgs[len(msgs)-1].Content)
	}
}

func TestHistoryUnbounded(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 25; i++ {
		h.Add(model.RoleUser, "m")
	}
	if h.Len() != 25 {
		t.Fatalf("Len = %d, want 25 with trimming disabled", h.Len())
	}
}

func TestHistoryMessagesReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Add(model.RoleUser, "original")
	msgs := h.Messages()
	msgs[0].Content = "mutated"
	if h.Messages()[0].Content != "original" {
		t.Fatal("Messages exposed internal state")
	}
}

func TestHistoryClearAndSummary(t *testing.T) {
	h := NewHistory(10)
	if got := h.Summary(); got != "No conversation history." {
		t.Fatalf("empty Summary = %q", got)
	}
	h.Add(model.RoleUser, "hi")
	h.Add(model.RoleAssistant, "chào bạn")
	if got := h.Summary(); got != "Conversation has 2 messages." {
		t.Fatalf("Summary = %q", got)
	}
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len after Clear = %d", h.Len())
	}
}
