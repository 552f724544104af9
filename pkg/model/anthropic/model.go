// Package anthropic implements the model backend over the official
// Anthropic SDK.
package anthropic

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	modelpkg "github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/telemetry"
)

const defaultMaxTokens = 4096

// Ensure Model implements the backend interface.
var _ modelpkg.Model = (*Model)(nil)

// Model talks to the Anthropic Messages API through the official SDK.
type Model struct {
	client    *anthropicsdk.Client
	model     anthropicsdk.Model
	maxTokens int
}

// New creates a model backed by the official Anthropic SDK. maxTokens <= 0
// falls back to a sensible default; the Messages API requires a cap.
func New(apiKey, model string, maxTokens int) *Model {
	client := anthropicsdk.NewClient(option.WithAPIKey(apiKey))
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Model{
		client:    &client,
		model:     anthropicsdk.Model(model),
		maxTokens: maxTokens,
	}
}

func (m *Model) buildParams(messages []modelpkg.Message, tools []map[string]any) (anthropicsdk.MessageNewParams, error) {
	systemBlocks, messageParams := convertMessages(messages)
	params := anthropicsdk.MessageNewParams{
		Model:     m.model,
		MaxTokens: int64(m.maxTokens),
		Messages:  messageParams,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if len(tools) > 0 {
		toolParams, err := convertTools(tools)
		if err != nil {
			return anthropicsdk.MessageNewParams{}, fmt.Errorf("convert tools: %w", err)
		}
		params.Tools = toolParams
	}
	return params, nil
}

// Complete performs a blocking call without tools.
func (m *Model) Complete(ctx context.Context, messages []modelpkg.Message) (_ modelpkg.Message, err error) {
	ctx, span := telemetry.StartSpan(ctx, "model.anthropic.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SanitizeAttributes(
			attribute.String("llm.provider", "anthropic"),
			attribute.String("llm.model", string(m.model)),
			attribute.Bool("llm.stream", false),
		)...),
	)
	defer telemetry.EndSpan(span, err)

	params, err := m.buildParams(messages, nil)
	if err != nil {
		return modelpkg.Message{}, err
	}
	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return modelpkg.Message{}, fmt.Errorf("anthropic call: %w", err)
	}
	return convertResponseMessage(*message), nil
}

// Stream opens an incremental completion, mapping text deltas and partial
// tool-use JSON onto the neutral chunk shape.
func (m *Model) Stream(ctx context.Context, messages []modelpkg.Message, tools []map[string]any) (modelpkg.ChunkStream, error) {
	ctx, span := telemetry.StartSpan(ctx, "model.anthropic.stream",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SanitizeAttributes(
			attribute.String("llm.provider", "anthropic"),
			attribute.String("llm.model", string(m.model)),
			attribute.Bool("llm.stream", true),
			attribute.Int("llm.tools_count", len(tools)),
		)...),
	)

	params, err := m.buildParams(messages, tools)
	if err != nil {
		telemetry.EndSpan(span, err)
		return nil, err
	}
	sdkStream := m.client.Messages.NewStreaming(ctx, params)
	return &chunkStream{stream: sdkStream, span: span}, nil
}
