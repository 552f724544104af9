package memory

import "context"

// Record is one stored document with its embedding.
type Record struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// VectorStore persists embeddings and answers nearest-neighbor queries.
type VectorStore interface {
	Add(ctx context.Context, rec Record) error
	Search(ctx context.Context, vector []float32, limit int) ([]Record, error)
	Close()
}
