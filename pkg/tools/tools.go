// Package tools holds the tool catalog and the registry that maps tool
// names to executable handlers. Handlers are discovered from ordered
// sources; an earlier source wins when two sources declare the same name.
package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/weather"
)

// Definition describes one callable tool to the language model. Parameters
// is a JSON-schema object enumerating the accepted argument names, their
// types, and which are required.
type Definition struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parameters  map[string]any `yaml:"parameters"`
}

// AsTool renders the definition in the wire shape the chat providers expect.
func (d Definition) AsTool() map[string]any {
	fn := map[string]any{"name": d.Name}
	if d.Description != "" {
		fn["description"] = d.Description
	}
	if len(d.Parameters) > 0 {
		fn["parameters"] = d.Parameters
	} else {
		fn["parameters"] = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return map[string]any{"type": "function", "function": fn}
}

// Context is handed to every handler invocation. It grants access to the
// model for secondary one-shot prompts and to the weather client; handlers
// are otherwise free of coupling to the pipeline.
type Context struct {
	Model   model.Model
	Weather *weather.Client
	Logger  *slog.Logger
}

// Ask performs a single-turn model call with the given prompt and returns
// the assistant text.
func (tc *Context) Ask(ctx context.Context, prompt string) (string, error) {
	if tc == nil || tc.Model == nil {
		return "", fmt.Errorf("no model configured for tool context")
	}
	msg, err := tc.Model.Complete(ctx, []model.Message{{Role: model.RoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// Log returns the context logger, falling back to the default.
func (tc *Context) Log() *slog.Logger {
	if tc == nil || tc.Logger == nil {
		return slog.Default()
	}
	return tc.Logger
}

// Handler is the executable behind a tool name. Invoke may return a string
// (the whole output), nil (no output), a []string or []any to be yielded
// piece by piece, or any other value whose string form is used; the
// dispatcher normalizes the result.
type Handler interface {
	Definition() Definition
	Invoke(ctx context.Context, tc *Context, args map[string]any) (any, error)
}

// InvokeFunc adapts a plain function into the Handler execution contract.
type InvokeFunc func(ctx context.Context, tc *Context, args map[string]any) (any, error)

type funcHandler struct {
	def Definition
	fn  InvokeFunc
}

// NewHandler pairs a definition with an invoke function.
func NewHandler(def Definition, fn InvokeFunc) Handler {
	return &funcHandler{def: def, fn: fn}
}

func (h *funcHandler) Definition() Definition { return h.def }

func (h *funcHandler) Invoke(ctx context.Context, tc *Context, args map[string]any) (any, error) {
	return h.fn(ctx, tc, args)
}

// Source produces handlers for the registry. Load is called on every
// reload; a Source that fails to load is skipped, not fatal.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Handler, error)
}

// StaticSource serves a fixed handler list, used for compiled-in tools and
// in tests.
type StaticSource struct {
	name     string
	handlers []Handler
}

// NewStaticSource builds a source that always returns the given handlers.
func NewStaticSource(name string, handlers ...Handler) *StaticSource {
	return &StaticSource{name: name, handlers: handlers}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Load(ctx context.Context) ([]Handler, error) {
	_ = ctx
	return append([]Handler(nil), s.handlers...), nil
}

// StringArg extracts a string argument, tolerating absent or non-string
// values the way the model tends to produce them.
func StringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	switch v := args[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
