package tools

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Registry maps tool names to handlers discovered from an ordered list of
// sources. The first source to declare a name owns it; later declarations
// for the same name are ignored without error. The maps are rebuilt
// atomically on Reload, so a concurrent Resolve never observes a partially
// rebuilt registry.
type Registry struct {
	sources []Source
	logger  *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
	ordered  []Definition
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLogger overrides the registry logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry builds a registry over the given sources, declared in
// priority order. Call Reload before the first Resolve.
func NewRegistry(sources []Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		sources:  sources,
		logger:   slog.Default(),
		handlers: map[string]Handler{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Reload rescans every source and swaps in the rebuilt name→handler map and
// the derived definition list. It never fails: a source that cannot load is
// logged and skipped, and a handler without a usable name is dropped.
func (r *Registry) Reload(ctx context.Context) {
	handlers := map[string]Handler{}
	var ordered []Definition

	for _, src := range r.sources {
		if src == nil {
			continue
		}
		loaded, err := src.Load(ctx)
		if err != nil {
			r.logger.Warn("tool source failed to load, skipping",
				"source", src.Name(), "error", err)
			continue
		}
		for _, h := range loaded {
			if h == nil {
				continue
			}
			def := h.Definition()
			name := strings.TrimSpace(def.Name)
			if name == "" {
				r.logger.Warn("tool handler has no name, skipping", "source", src.Name())
				continue
			}
			if _, exists := handlers[name]; exists {
				r.logger.Debug("tool name already registered by earlier source, ignoring",
					"tool", name, "source", src.Name())
				continue
			}
			handlers[name] = h
			ordered = append(ordered, def)
			r.logger.Debug("registered tool", "tool", name, "source", src.Name())
		}
	}

	r.mu.Lock()
	r.handlers = handlers
	r.ordered = ordered
	r.mu.Unlock()
}

// Resolve looks up the handler for name.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Definitions returns the full catalog in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Definition(nil), r.ordered...)
}

// Catalog renders every definition in provider wire form, suitable for the
// tools field of a completion request. Definitions may describe tools that
// later fail to resolve; dispatch treats that as an unsupported tool rather
// than an error.
func (r *Registry) Catalog() []map[string]any {
	defs := r.Definitions()
	if len(defs) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.AsTool())
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
