package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// text-embedding-3-small dimensionality.
const embeddingDims = 1536

// PGStore is a pgvector-backed VectorStore.
type PGStore struct {
	pool *pgxpool.Pool
}

// Ensure PGStore implements VectorStore.
var _ VectorStore = (*PGStore)(nil)

// NewPGStore connects to Postgres and verifies the connection. pgvector
// types are registered on every new connection in the pool.
func NewPGStore(ctx context.Context, pgURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres URL: %w", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Init creates the pgvector extension, the documents table, and the HNSW
// index if they do not exist.
func (s *PGStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS food_documents (
			id        TEXT PRIMARY KEY,
			content   TEXT NOT NULL,
			metadata  JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL,
			added_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, embeddingDims)); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_food_documents_hnsw
		ON food_documents
		USING hnsw (embedding vector_cosine_ops)
		WITH (m = 16, ef_construction = 64)
	`); err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}

// Add upserts one record.
func (s *PGStore) Add(ctx context.Context, rec Record) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO food_documents (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    metadata = EXCLUDED.metadata,
		    embedding = EXCLUDED.embedding
	`, rec.ID, rec.Content, meta, pgvector.NewVector(rec.Vector))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Search returns the limit nearest records by cosine distance.
func (s *PGStore) Search(ctx context.Context, vector []float32, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, content, metadata
		FROM food_documents
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.Content, &meta); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
