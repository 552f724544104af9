package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultEmbeddingModel matches the dimensionality the store is created with.
const DefaultEmbeddingModel = "text-embedding-3-small"

// OpenAIEmbedder generates embeddings through OpenAI's embeddings API.
type OpenAIEmbedder struct {
	client openaisdk.Client
	model  openaisdk.EmbeddingModel
}

// OpenAIEmbedderOption customizes the embedder.
type OpenAIEmbedderOption func(*[]option.RequestOption)

// WithEmbedderBaseURL points the embedder at a compatible endpoint.
func WithEmbedderBaseURL(u string) OpenAIEmbedderOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(u))
	}
}

// NewOpenAIEmbedder creates an embedder for the given model.
func NewOpenAIEmbedder(apiKey, model string, opts ...OpenAIEmbedderOption) (*OpenAIEmbedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai embedder: api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultEmbeddingModel
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		if opt != nil {
			opt(&reqOpts)
		}
	}
	return &OpenAIEmbedder{
		client: openaisdk.NewClient(reqOpts...),
		model:  openaisdk.EmbeddingModel(model),
	}, nil
}

// Embed converts the provided texts into dense vectors.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("openai embedder: no texts provided")
	}
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: e.model,
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings call: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
