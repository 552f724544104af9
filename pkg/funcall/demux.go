package funcall

import (
	"context"
	"fmt"
	"strings"

	"github.com/angilabs/angi/pkg/model"
)

// Pipeline drains a streamed completion, relaying text increments to the
// caller as they arrive and silently accumulating at most one tool call.
// When the stream ends cleanly with a recorded function name, the call is
// dispatched exactly once and its output continues the same yield stream.
//
// Providers may emit several parallel tool calls per turn; only the first
// is tracked here, matching the single name/buffer pair the rest of the
// pipeline is built around.
type Pipeline struct {
	dispatcher *Dispatcher
}

// NewPipeline wires the demultiplexer to a dispatcher.
func NewPipeline(d *Dispatcher) *Pipeline {
	return &Pipeline{dispatcher: d}
}

// Run consumes stream until exhaustion. Text chunks are yielded immediately
// in arrival order. Tool-call chunks are never yielded: the function name
// is assigned whenever a non-empty value arrives (providers may stream it
// progressively) and argument fragments are concatenated in arrival order
// with no separator.
//
// If the stream fails before completing, the partial buffer is discarded
// and no dispatch occurs: an incomplete tool call must not execute with a
// truncated argument buffer. The error is returned to the caller.
func (p *Pipeline) Run(ctx context.Context, stream model.ChunkStream, yield func(string) error) error {
	defer stream.Close()

	var (
		name string
		args strings.Builder
	)

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := stream.Current()
		if chunk.Text != "" {
			if err := yield(chunk.Text); err != nil {
				return err
			}
			continue
		}
		if call := chunk.ToolCall; call != nil {
			if call.Name != "" {
				name = call.Name
			}
			if call.Arguments != "" {
				args.WriteString(call.Arguments)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("model stream: %w", err)
	}

	if name == "" {
		// Argument fragments without a name are discarded; there is
		// nothing safe to dispatch.
		return nil
	}
	return p.dispatcher.Dispatch(ctx, name, args.String(), yield)
}
