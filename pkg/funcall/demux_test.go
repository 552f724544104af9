package funcall

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/tools"
)

// fakeStream replays a scripted chunk sequence, optionally ending in an error.
type fakeStream struct {
	chunks []model.Chunk
	err    error
	pos    int
	closed bool
}

func (s *fakeStream) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *fakeStream) Current() model.Chunk { return s.chunks[s.pos-1] }
func (s *fakeStream) Err() error           { return s.err }
func (s *fakeStream) Close() error         { s.closed = true; return nil }

func textChunk(text string) model.Chunk {
	return model.Chunk{Text: text}
}

func callChunk(name, args string) model.Chunk {
	return model.Chunk{ToolCall: &model.ToolCallDelta{Name: name, Arguments: args}}
}

func newTestPipeline(handlers mapResolver) *Pipeline {
	return NewPipeline(NewDispatcher(handlers, nil, WithDispatchLogger(quietLogger())))
}

func runPipeline(t *testing.T, p *Pipeline, stream *fakeStream) []string {
	t.Helper()
	var got []string
	err := p.Run(context.Background(), stream, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !stream.closed {
		t.Fatal("stream was not closed")
	}
	return got
}

func TestPipelineTextOnly(t *testing.T) {
	p := newTestPipeline(mapResolver{})
	stream := &fakeStream{chunks: []model.Chunk{
		textChunk("Xin "), textChunk("chào "), textChunk("bạn!"),
	}}
	got := runPipeline(t, p, stream)
	if strings.Join(got, "") != "Xin chào bạn!" {
		t.Fatalf("unexpected text output: %v", got)
	}
}

func TestPipelineDispatchesOnceAtStreamEnd(t *testing.T) {
	invocations := 0
	handlers := mapResolver{
		"get_current_weather": testHandler("get_current_weather", func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
			invocations++
			if args["location"] != "Hanoi" {
				t.Fatalf("args = %#v", args)
			}
			return "20°C", nil
		}),
	}
	p := newTestPipeline(handlers)
	stream := &fakeStream{chunks: []model.Chunk{
		textChunk("Hello"),
		callChunk("get_current_weather", ""),
		callChunk("", `{"location": `),
		callChunk("", `"Hanoi"}`),
	}}
	got := runPipeline(t, p, stream)
	if invocations != 1 {
		t.Fatalf("handler invoked %d times, want 1", invocations)
	}
	want := []string{"Hello", "20°C"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("yielded %v, want %v", got, want)
	}
}

func TestPipelineProgressiveName(t *testing.T) {
	var dispatched string
	handlers := mapResolver{
		"recommend_food": testHandler("recommend_food", func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
			dispatched = "recommend_food"
			return "phở", nil
		}),
	}
	p := newTestPipeline(handlers)
	// The name arrives in a later fragment than the first tool-call delta.
	stream := &fakeStream{chunks: []model.Chunk{
		callChunk("", `{"meal`),
		callChunk("recommend_food", `_time": "trưa"}`),
	}}
	runPipeline(t, p, stream)
	if dispatched != "recommend_food" {
		t.Fatal("late-arriving name was not honored")
	}
}

func TestPipelineNoNameDiscardsArguments(t *testing.T) {
	handlers := mapResolver{
		"fn": testHandler("fn", func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
			t.Fatal("nothing should be dispatched without a name")
			return nil, nil
		}),
	}
	p := newTestPipeline(handlers)
	stream := &fakeStream{chunks: []model.Chunk{
		callChunk("", `{"orphan": true}`),
	}}
	got := runPipeline(t, p, stream)
	if len(got) != 0 {
		t.Fatalf("yielded %v, want nothing", got)
	}
}

func TestPipelineStreamErrorSkipsDispatch(t *testing.T) {
	handlers := mapResolver{
		"fn": testHandler("fn", func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
			t.Fatal("a failed stream must not dispatch")
			return nil, nil
		}),
	}
	p := newTestPipeline(handlers)
	streamErr := errors.New("connection reset")
	stream := &fakeStream{
		chunks: []model.Chunk{
			textChunk("partial "),
			callChunk("fn", `{"truncated`),
		},
		err: streamErr,
	}
	var got []string
	err := p.Run(context.Background(), stream, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	if !errors.Is(err, streamErr) {
		t.Fatalf("Run error = %v, want wrapped %v", err, streamErr)
	}
	// Text seen before the failure was already relayed.
	if len(got) != 1 || got[0] != "partial " {
		t.Fatalf("yielded %v", got)
	}
	if !stream.closed {
		t.Fatal("stream was not closed")
	}
}

func TestPipelineContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestPipeline(mapResolver{})
	stream := &fakeStream{chunks: []model.Chunk{textChunk("never seen")}}
	err := p.Run(ctx, stream, func(chunk string) error {
		t.Fatalf("yielded %q after cancellation", chunk)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestPipelineUnknownFunctionWarning(t *testing.T) {
	p := newTestPipeline(mapResolver{})
	stream := &fakeStream{chunks: []model.Chunk{
		callChunk("no_such_tool", `{}`),
	}}
	got := runPipeline(t, p, stream)
	if len(got) != 1 || got[0] != `⚠️ Function "no_such_tool" is not supported.` {
		t.Fatalf("yielded %v", got)
	}
}
