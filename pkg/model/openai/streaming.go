package openai

import (
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"go.opentelemetry.io/otel/trace"

	modelpkg "github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/telemetry"
)

// chunkStream adapts the SDK's server-sent-event stream to the neutral
// ChunkStream contract, surfacing one delta per increment. Several parallel
// tool calls may be streamed by the provider; only the first delta of each
// increment is relayed, matching the single tracked call downstream.
type chunkStream struct {
	stream  *ssestream.Stream[openaisdk.ChatCompletionChunk]
	span    trace.Span
	current modelpkg.Chunk
	closed  bool
}

func (s *chunkStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			s.current = modelpkg.Chunk{Text: delta.Content}
			return true
		}
		if len(delta.ToolCalls) > 0 {
			call := delta.ToolCalls[0]
			s.current = modelpkg.Chunk{ToolCall: &modelpkg.ToolCallDelta{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			}}
			return true
		}
	}
	return false
}

func (s *chunkStream) Current() modelpkg.Chunk { return s.current }

func (s *chunkStream) Err() error { return s.stream.Err() }

func (s *chunkStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.stream.Close()
	telemetry.EndSpan(s.span, s.stream.Err())
	return err
}
