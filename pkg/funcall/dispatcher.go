// Package funcall implements the function-calling side of a streamed chat
// completion: splitting the incremental response into text and tool-call
// fragments, reassembling the call's JSON arguments, and dispatching the
// call to a registered handler once the stream ends.
package funcall

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angilabs/angi/pkg/tools"
)

// Resolver looks up the handler registered for a tool name. Implemented by
// *tools.Registry.
type Resolver interface {
	Resolve(name string) (tools.Handler, bool)
}

// Dispatcher resolves a tool name to a handler and runs it. Every failure
// mode (unknown tool, unparsable arguments, a handler error or panic) is
// converted into a single human-readable output chunk; a tool-call problem
// must never abort the conversation.
type Dispatcher struct {
	resolver Resolver
	toolCtx  *tools.Context
	logger   *slog.Logger
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger overrides the dispatcher logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher wires a dispatcher to a handler resolver and the context
// handed to every handler invocation.
func NewDispatcher(resolver Resolver, toolCtx *tools.Context, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		toolCtx:  toolCtx,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dispatch resolves name, parses the accumulated argument buffer, invokes
// the handler, and yields its normalized output piece by piece. The
// returned error is non-nil only when yield itself fails; handler faults
// never escape past this boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, name, rawArgs string, yield func(string) error) error {
	d.logger.Info("dispatching function call", "function", name)

	handler, ok := d.resolver.Resolve(name)
	if !ok {
		d.logger.Warn("function not found among registered handlers", "function", name)
		return yield(fmt.Sprintf("⚠️ Function %q is not supported.", name))
	}

	args, err := ParseArguments(rawArgs)
	if err != nil {
		d.logger.Error("failed to parse function arguments", "function", name, "error", err)
		return yield(fmt.Sprintf("❌ Failed to parse arguments for %q: %v", name, err))
	}

	result, err := d.invoke(ctx, handler, args)
	if err != nil {
		d.logger.Error("function execution failed", "function", name, "error", err)
		return yield(fmt.Sprintf("❌ Error executing function %q: %v", name, err))
	}

	return yieldResult(name, result, yield)
}

// invoke runs the handler with panic containment, so a misbehaving tool is
// reported the same way as one returning an error.
func (d *Dispatcher) invoke(ctx context.Context, handler tools.Handler, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Invoke(ctx, d.toolCtx, args)
}

// yieldResult normalizes a handler's return value: nil becomes a canned
// success message, a string is yielded whole, slices are yielded element by
// element with non-strings coerced, and anything else is yielded in its
// string form.
func yieldResult(name string, result any, yield func(string) error) error {
	switch v := result.(type) {
	case nil:
		return yield(fmt.Sprintf("✅ Function %q executed successfully (no return value).", name))
	case string:
		return yield(v)
	case []string:
		for _, piece := range v {
			if err := yield(piece); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, piece := range v {
			if err := yield(stringify(piece)); err != nil {
				return err
			}
		}
		return nil
	default:
		return yield(stringify(v))
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
