// Package prompt assembles the system prompts that frame every model call.
// Default prompts ship compiled into the binary; a directory on disk can
// override them file by file.
package prompt

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/angilabs/angi/pkg/model"
)

//go:embed defaults/*.txt
var defaultFS embed.FS

// Builder combines the chatbot role and persona prompts into system
// messages and prepends them to conversation history.
type Builder struct {
	overrideDir string
	system      string
}

// Option customizes a Builder.
type Option func(*Builder)

// WithOverrideDir points the builder at a directory whose files take
// precedence over the embedded defaults.
func WithOverrideDir(dir string) Option {
	return func(b *Builder) { b.overrideDir = dir }
}

// NewBuilder loads the system prompts once at construction.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	role := b.load("chatbot_role.txt")
	persona := b.load("persona.txt")
	b.system = strings.TrimSpace(role + "\n\n" + persona)
	return b
}

// load returns the override file if present, the embedded default otherwise,
// and an empty string when neither exists.
func (b *Builder) load(name string) string {
	if b.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(b.overrideDir, name))
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	data, err := defaultFS.ReadFile("defaults/" + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SystemMessage builds the leading system message, appending
// additionalContext when non-empty.
func (b *Builder) SystemMessage(additionalContext string) model.Message {
	content := b.system
	if additionalContext != "" {
		content = fmt.Sprintf("%s\n\nAdditional Context:\n%s", content, additionalContext)
	}
	return model.Message{Role: model.RoleSystem, Content: content}
}

// Messages prepends the system message to the conversation history.
func (b *Builder) Messages(history []model.Message, additionalContext string) []model.Message {
	messages := make([]model.Message, 0, len(history)+1)
	messages = append(messages, b.SystemMessage(additionalContext))
	messages = append(messages, history...)
	return messages
}

// Load reads a named prompt template, honoring the override directory.
func (b *Builder) Load(name string) (string, error) {
	if b.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(b.overrideDir, name))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
	}
	data, err := defaultFS.ReadFile("defaults/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt %q not found: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
