package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/angilabs/angi/pkg/memory"
	"github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/tools"
)

// scriptedStream replays chunks and then ends, optionally with an error.
type scriptedStream struct {
	chunks []model.Chunk
	err    error
	pos    int
}

func (s *scriptedStream) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *scriptedStream) Current() model.Chunk { return s.chunks[s.pos-1] }
func (s *scriptedStream) Err() error           { return s.err }
func (s *scriptedStream) Close() error         { return nil }

// scriptedModel records the request and replays a fixed stream.
type scriptedModel struct {
	stream    *scriptedStream
	streamErr error

	lastMessages []model.Message
	lastTools    []map[string]any
}

func (m *scriptedModel) Complete(ctx context.Context, messages []model.Message) (model.Message, error) {
	return model.Message{Role: model.RoleAssistant, Content: "ok"}, nil
}

func (m *scriptedModel) Stream(ctx context.Context, messages []model.Message, toolDefs []map[string]any) (model.ChunkStream, error) {
	m.lastMessages = messages
	m.lastTools = toolDefs
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return &scriptedStream{chunks: m.stream.chunks, err: m.stream.err}, nil
}

// fixedStore returns the same records for every search.
type fixedStore struct {
	records []memory.Record
	added   []memory.Record
}

func (s *fixedStore) Add(ctx context.Context, rec memory.Record) error {
	s.added = append(s.added, rec)
	return nil
}

func (s *fixedStore) Search(ctx context.Context, vector []float32, limit int) ([]memory.Record, error) {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return s.records[:limit], nil
}

func (s *fixedStore) Close() {}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T, handlers ...tools.Handler) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry(
		[]tools.Source{tools.NewStaticSource("test", handlers...)},
		tools.WithLogger(quietLogger()),
	)
	r.Reload(context.Background())
	return r
}

func collectSend(t *testing.T, m *Manager, msg string) []string {
	t.Helper()
	var got []string
	if err := m.Send(context.Background(), msg, func(chunk string) error {
		got = append(got, chunk)
		return nil
	}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	return got
}

func TestSendStreamsTextAndCommitsHistory(t *testing.T) {
	mdl := &scriptedModel{stream: &scriptedStream{chunks: []model.Chunk{
		{Text: "Thử "}, {Text: "bún chả nhé!"},
	}}}
	m := NewManager(mdl, testRegistry(t), nil, 10, WithManagerLogger(quietLogger()))

	got := collectSend(t, m, "trưa nay ăn gì?")
	if strings.Join(got, "") != "Thử bún chả nhé!" {
		t.Fatalf("yielded %v", got)
	}

	history := m.History()
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want user + assistant", len(history))
	}
	if history[0].Role != model.RoleUser || history[0].Content != "trưa nay ăn gì?" {
		t.Fatalf("user turn not recorded: %#v", history[0])
	}
	if history[1].Role != model.RoleAssistant || history[1].Content != "Thử bún chả nhé!" {
		t.Fatalf("assistant turn not recorded: %#v", history[1])
	}
}

func TestSendIncludesSystemPromptAndCatalog(t *testing.T) {
	mdl := &scriptedModel{stream: &scriptedStream{}}
	handler := tools.NewHandler(tools.Definition{Name: "recommend_food"},
		func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
			return "ok", nil
		})
	m := NewManager(mdl, testRegistry(t, handler), nil, 10, WithManagerLogger(quietLogger()))
	collectSend(t, m, "hi")

	if len(mdl.lastMessages) == 0 || mdl.lastMessages[0].Role != model.RoleSystem {
		t.Fatalf("request does not start with a system prompt: %v", mdl.lastMessages)
	}
	if len(mdl.lastTools) != 1 {
		t.Fatalf("tool catalog not forwarded: %v", mdl.lastTools)
	}
}

func TestSendDispatchesToolCall(t *testing.T) {
	mdl := &scriptedModel{stream: &scriptedStream{chunks: []model.Chunk{
		{ToolCall: &model.ToolCallDelta{Name: "get_current_weather"}},
		{ToolCall: &model.ToolCallDelta{Arguments: "{}"}},
	}}}
	handler := tools.NewHandler(tools.Definition{Name: "get_current_weather"},
		func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
			return "Thời tiết ở Hanoi hôm nay là 20°C.", nil
		})
	m := NewManager(mdl, testRegistry(t, handler), nil, 10, WithManagerLogger(quietLogger()))

	got := collectSend(t, m, "thời tiết thế nào?")
	if len(got) != 1 || !strings.Contains(got[0], "20°C") {
		t.Fatalf("yielded %v", got)
	}
	// The tool output is part of the assistant turn in history.
	history := m.History()
	if history[len(history)-1].Content != got[0] {
		t.Fatalf("tool output missing from history: %v", history)
	}
}

func TestSendInsertsRetrievedContext(t *testing.T) {
	mdl := &scriptedModel{stream: &scriptedStream{chunks: []model.Chunk{{Text: "ok"}}}}
	store := &fixedStore{records: []memory.Record{
		{ID: "1", Content: "Phở bò Hà Nội"},
		{ID: "2", Content: "Bún chả"},
	}}
	sem := memory.NewSemantic(&memory.StaticEmbedder{Vector: []float32{1}}, store, quietLogger())
	m := NewManager(mdl, testRegistry(t), nil, 10,
		WithManagerLogger(quietLogger()), WithSemantic(sem))

	collectSend(t, m, "gợi ý món nước")

	if len(mdl.lastMessages) < 3 {
		t.Fatalf("expected system + rag + user, got %v", mdl.lastMessages)
	}
	rag := mdl.lastMessages[1]
	if rag.Role != model.RoleSystem {
		t.Fatalf("retrieved context not inserted after the system prompt: %v", mdl.lastMessages)
	}
	if !strings.Contains(rag.Content, "Phở bò Hà Nội") || !strings.Contains(rag.Content, "- Bún chả") {
		t.Fatalf("retrieved items missing: %q", rag.Content)
	}
	// The user message itself was written to long-term memory.
	if len(store.added) != 1 || store.added[0].Content != "gợi ý món nước" {
		t.Fatalf("user message not persisted: %v", store.added)
	}
}

func TestSendNoContextWhenNothingRetrieved(t *testing.T) {
	mdl := &scriptedModel{stream: &scriptedStream{chunks: []model.Chunk{{Text: "ok"}}}}
	sem := memory.NewSemantic(&memory.StaticEmbedder{Vector: []float32{1}}, &fixedStore{}, quietLogger())
	m := NewManager(mdl, testRegistry(t), nil, 10,
		WithManagerLogger(quietLogger()), WithSemantic(sem))

	collectSend(t, m, "hi")
	for _, msg := range mdl.lastMessages[1:] {
		if msg.Role == model.RoleSystem {
			t.Fatalf("unexpected extra system message: %q", msg.Content)
		}
	}
}

func TestSendStreamErrorLeavesReplyOut(t *testing.T) {
	streamErr := errors.New("connection reset")
	mdl := &scriptedModel{stream: &scriptedStream{
		chunks: []model.Chunk{{Text: "partial"}},
		err:    streamErr,
	}}
	m := NewManager(mdl, testRegistry(t), nil, 10, WithManagerLogger(quietLogger()))

	err := m.Send(context.Background(), "hi", func(string) error { return nil })
	if !errors.Is(err, streamErr) {
		t.Fatalf("Send error = %v, want %v", err, streamErr)
	}
	history := m.History()
	if len(history) != 1 || history[0].Role != model.RoleUser {
		t.Fatalf("partial reply must not be committed: %v", history)
	}
}

func TestSendStartFailure(t *testing.T) {
	mdl := &scriptedModel{streamErr: errors.New("401 unauthorized")}
	m := NewManager(mdl, testRegistry(t), nil, 10, WithManagerLogger(quietLogger()))
	if err := m.Send(context.Background(), "hi", func(string) error { return nil }); err == nil {
		t.Fatal("Send swallowed the stream start failure")
	}
}

func TestClearAndSummary(t *testing.T) {
	mdl := &scriptedModel{stream: &scriptedStream{chunks: []model.Chunk{{Text: "ok"}}}}
	m := NewManager(mdl, testRegistry(t), nil, 10, WithManagerLogger(quietLogger()))
	collectSend(t, m, "hi")
	if m.ContextSummary() != "Conversation has 2 messages." {
		t.Fatalf("Summary = %q", m.ContextSummary())
	}
	m.Clear()
	if m.ContextSummary() != "No conversation history." {
		t.Fatalf("Summary after Clear = %q", m.ContextSummary())
	}
	if m.SessionID() == "" {
		t.Fatal("SessionID is empty")
	}
}
