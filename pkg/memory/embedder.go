package memory

import "context"

// Embedder transforms raw text into dense vectors compatible with the
// vector store.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// StaticEmbedder returns the same vector for every input, useful for
// deterministic tests.
type StaticEmbedder struct{ Vector []float32 }

// Embed returns identical vectors for each input.
func (e *StaticEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	_ = ctx
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = append([]float32(nil), e.Vector...)
	}
	return vectors, nil
}
