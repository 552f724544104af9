package anthropic

import (
	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"go.opentelemetry.io/otel/trace"

	modelpkg "github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/telemetry"
)

// chunkStream maps Anthropic stream events onto the neutral chunk shape:
// a tool_use content_block_start carries the call name and id, text deltas
// carry prose, and input_json_delta events carry raw argument fragments.
type chunkStream struct {
	stream  *ssestream.Stream[anthropicsdk.MessageStreamEventUnion]
	span    trace.Span
	current modelpkg.Chunk
	closed  bool
}

func (s *chunkStream) Next() bool {
	for s.stream.Next() {
		event := s.stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropicsdk.ContentBlockStartEvent:
			switch block := ev.ContentBlock.AsAny().(type) {
			case anthropicsdk.ToolUseBlock:
				s.current = modelpkg.Chunk{ToolCall: &modelpkg.ToolCallDelta{
					ID:   block.ID,
					Name: block.Name,
				}}
				return true
			}
		case anthropicsdk.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropicsdk.TextDelta:
				if delta.Text == "" {
					continue
				}
				s.current = modelpkg.Chunk{Text: delta.Text}
				return true
			case anthropicsdk.InputJSONDelta:
				if delta.PartialJSON == "" {
					continue
				}
				s.current = modelpkg.Chunk{ToolCall: &modelpkg.ToolCallDelta{
					Arguments: delta.PartialJSON,
				}}
				return true
			}
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
