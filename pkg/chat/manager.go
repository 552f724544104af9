// Package chat wires the conversation loop together: history, long-term
// memory, prompt assembly, the model stream and function dispatch.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/angilabs/angi/pkg/funcall"
	"github.com/angilabs/angi/pkg/memory"
	"github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/prompt"
	"github.com/angilabs/angi/pkg/tools"
)

const defaultSimilarResults = 3

// Manager orchestrates one conversation session.
type Manager struct {
	sessionID string
	model     model.Model
	history   *memory.History
	semantic  *memory.Semantic
	prompts   *prompt.Builder
	registry  *tools.Registry
	pipeline  *funcall.Pipeline
	logger    *slog.Logger
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithSemantic attaches a long-term memory. A nil or disabled memory is
// simply skipped at send time.
func WithSemantic(s *memory.Semantic) ManagerOption {
	return func(m *Manager) { m.semantic = s }
}

// WithManagerLogger overrides the default logger.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager builds a session around a model, a tool registry and a
// conversation history of at most maxHistory messages.
func NewManager(mdl model.Model, registry *tools.Registry, toolCtx *tools.Context, maxHistory int, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessionID: uuid.NewString(),
		model:     mdl,
		history:   memory.NewHistory(maxHistory),
		prompts:   prompt.NewBuilder(),
		registry:  registry,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	dispatcher := funcall.NewDispatcher(registry, toolCtx, funcall.WithDispatchLogger(m.logger))
	m.pipeline = funcall.NewPipeline(dispatcher)
	return m
}

// SessionID identifies this conversation.
func (m *Manager) SessionID() string { return m.sessionID }

// Send streams the assistant's reply to yield chunk by chunk. The full
// reply is committed to history only after the stream completes.
func (m *Manager) Send(ctx context.Context, userMessage string, yield func(string) error) error {
	m.history.Add(model.RoleUser, userMessage)

	if m.semantic.Enabled() {
		m.semantic.AddText(ctx, userMessage, map[string]string{
			"role":    string(model.RoleUser),
			"session": m.sessionID,
		})
	}

	messages := m.prompts.Messages(m.history.Messages(), "")
	messages = m.insertRetrievedContext(ctx, messages, userMessage)

	stream, err := m.model.Stream(ctx, messages, m.registry.Catalog())
	if err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	var full strings.Builder
	err = m.pipeline.Run(ctx, stream, func(chunk string) error {
		full.WriteString(chunk)
		return yield(chunk)
	})
	if err != nil {
		return err
	}

	if reply := full.String(); reply != "" {
		m.history.Add(model.RoleAssistant, reply)
	}
	return nil
}

// insertRetrievedContext looks up texts similar to the user message and,
// when any are found, inserts a system message carrying them right after
// the leading system prompt.
func (m *Manager) insertRetrievedContext(ctx context.Context, messages []model.Message, userMessage string) []model.Message {
	if !m.semantic.Enabled() {
		return messages
	}
	similar := m.semantic.SearchSimilar(ctx, userMessage, defaultSimilarResults)
	if len(similar) == 0 {
		return messages
	}

	var sb strings.Builder
	sb.WriteString("Bạn là trợ lý AI chuyên tư vấn về ẩm thực. ")
	sb.WriteString("Hãy sử dụng thông tin dưới đây để giúp trả lời câu hỏi người dùng nếu phù hợp.\n\n")
	sb.WriteString("Thông tin tham khảo được truy xuất từ cơ sở dữ liệu (có thể hữu ích cho câu hỏi):\n\n")
	for _, item := range similar {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	ragMsg := model.Message{Role: model.RoleSystem, Content: strings.TrimRight(sb.String(), "\n")}

	pos := 0
	if len(messages) > 0 && messages[0].Role == model.RoleSystem {
		pos = 1
	}
	out := make([]model.Message, 0, len(messages)+1)
	out = append(out, messages[:pos]...)
	out = append(out, ragMsg)
	out = append(out, messages[pos:]...)
	return out
}

// History returns a copy of the conversation so far.
func (m *Manager) History() []model.Message {
	return m.history.Messages()
}

// Clear drops the conversation history.
func (m *Manager) Clear() {
	m.history.Clear()
}

// ContextSummary describes the current history size.
func (m *Manager) ContextSummary() string {
	return m.history.Summary()
}
