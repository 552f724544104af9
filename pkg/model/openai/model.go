// Package openai implements the model backend over the official OpenAI SDK.
package openai

import (
	"context"
	"errors"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	modelpkg "github.com/angilabs/angi/pkg/model"
	"github.com/angilabs/angi/pkg/telemetry"
)

// Ensure Model implements the backend interface.
var _ modelpkg.Model = (*Model)(nil)

// Model talks to OpenAI's Chat Completions API through the official SDK.
type Model struct {
	client      openaisdk.Client
	model       openaisdk.ChatModel
	maxTokens   int
	temperature *float64
}

// Option customizes a Model.
type Option func(*config)

type config struct {
	baseURL     string
	maxTokens   int
	temperature *float64
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) Option {
	return func(c *config) { c.maxTokens = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *config) { c.temperature = &t }
}

// New creates a model backed by the official OpenAI SDK.
func New(apiKey, model string, opts ...Option) *Model {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &Model{
		client:      openaisdk.NewClient(reqOpts...),
		model:       openaisdk.ChatModel(model),
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}
}

func (m *Model) buildParams(messages []modelpkg.Message, tools []map[string]any) (openaisdk.ChatCompletionNewParams, error) {
	messageParams, err := convertMessages(messages)
	if err != nil {
		return openaisdk.ChatCompletionNewParams{}, err
	}
	params := openaisdk.ChatCompletionNewParams{
		Messages: messageParams,
		Model:    m.model,
	}
	if m.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(m.maxTokens))
	}
	if m.temperature != nil {
		params.Temperature = openaisdk.Float(*m.temperature)
	}
	if len(tools) > 0 {
		toolParams, err := convertTools(tools)
		if err != nil {
			return openaisdk.ChatCompletionNewParams{}, fmt.Errorf("convert tools: %w", err)
		}
		params.Tools = toolParams
	}
	return params, nil
}

// Complete performs a blocking call without tools, used for the one-shot
// prompts tool handlers issue.
func (m *Model) Complete(ctx context.Context, messages []modelpkg.Message) (_ modelpkg.Message, err error) {
	ctx, span := telemetry.StartSpan(ctx, "model.openai.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SanitizeAttributes(
			attribute.String("llm.provider", "openai"),
			attribute.String("llm.model", string(m.model)),
			attribute.Bool("llm.stream", false),
		)...),
	)
	defer telemetry.EndSpan(span, err)

	params, err := m.buildParams(messages, nil)
	if err != nil {
		return modelpkg.Message{}, err
	}
	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return modelpkg.Message{}, fmt.Errorf("openai call: %w", err)
	}
	if len(completion.Choices) == 0 {
		return modelpkg.Message{}, errors.New("openai response contains no choices")
	}
	return convertResponseMessage(completion.Choices[0].Message)
}

// Stream opens an incremental completion. The returned stream surfaces raw
// deltas: text fragments and partial tool calls, exactly as they arrive.
func (m *Model) Stream(ctx context.Context, messages []modelpkg.Message, tools []map[string]any) (modelpkg.ChunkStream, error) {
	ctx, span := telemetry.StartSpan(ctx, "model.openai.stream",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SanitizeAttributes(
			attribute.String("llm.provider", "openai"),
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
	sdkStream := m.client.Chat.Completions.NewStreaming(ctx, params)
	return &chunkStream{stream: sdkStream, span: span}, nil
}
