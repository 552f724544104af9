// Package model defines the provider-neutral chat types shared by the
// OpenAI and Anthropic backends and the function-calling pipeline.
package model

import "context"

// Message roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single role-tagged conversation entry.
type Message struct {
	Role      string
	Content   string
	ToolCalls []ToolCall
}

// ToolCall is a fully assembled tool invocation carried by an assistant
// message, with arguments already decoded.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Chunk is one unit of an incremental model response. Exactly one of Text
// or ToolCall is populated; increments carrying neither are filtered out by
// the backend adapters.
type Chunk struct {
	Text     string
	ToolCall *ToolCallDelta
}

// ToolCallDelta is a partial tool invocation. Name appears on whichever
// increments the provider chooses to carry it; Arguments is a raw fragment
// to be concatenated in arrival order.
type ToolCallDelta struct {
	ID        string
	Name      string
	Arguments string
}

// ChunkStream delivers Chunks one at a time. Next reports whether another
// chunk is available; after Next returns false, Err distinguishes a clean
// end-of-stream (nil) from a transport failure. Close releases the
// underlying connection and is safe to call more than once.
type ChunkStream interface {
	Next() bool
	Current() Chunk
	Err() error
	Close() error
}

// Model describes the behavior every language-model backend must support.
// Complete is a unary request/response call used for one-shot prompts inside
// tool handlers. Stream opens an incremental completion; tools, when
// non-empty, is the function catalog in wire form ("type"/"function" maps)
// handed to the provider with tool choice left on auto.
type Model interface {
	Complete(ctx context.Context, messages []Message) (Message, error)
	Stream(ctx context.Context, messages []Message, tools []map[string]any) (ChunkStream, error)
}
