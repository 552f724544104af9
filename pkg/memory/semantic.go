package memory

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

//go:embed seed/favourites.json
var seedFS embed.FS

type seedFood struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Desc string   `json:"desc"`
	Tags []string `json:"tags"`
}

// Semantic is the long-term memory layer: texts are embedded and stored in
// a vector store, and similar texts are retrieved to ground answers. All
// failures degrade gracefully; a broken memory never breaks the chat.
type Semantic struct {
	embedder Embedder
	store    VectorStore
	logger   *slog.Logger
}

// NewSemantic wires an embedder to a store. Either being nil yields a
// disabled memory whose operations are no-ops.
func NewSemantic(embedder Embedder, store VectorStore, logger *slog.Logger) *Semantic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Semantic{embedder: embedder, store: store, logger: logger}
}

// Enabled reports whether the memory can store and search.
func (s *Semantic) Enabled() bool {
	return s != nil && s.embedder != nil && s.store != nil
}

// Preload seeds the store with the bundled favourite dishes.
func (s *Semantic) Preload(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	data, err := seedFS.ReadFile("seed/favourites.json")
	if err != nil {
		return fmt.Errorf("read seed data: %w", err)
	}
	var foods []seedFood
	if err := json.Unmarshal(data, &foods); err != nil {
		return fmt.Errorf("decode seed data: %w", err)
	}

	for _, food := range foods {
		vectors, err := s.embedder.Embed(ctx, []string{food.Desc})
		if err != nil {
			return fmt.Errorf("embed %q: %w", food.Name, err)
		}
		rec := Record{
			ID:      food.ID,
			Content: food.Desc,
			Vector:  vectors[0],
			Metadata: map[string]string{
				"name": food.Name,
				"tags": strings.Join(food.Tags, ", "),
			},
		}
		if err := s.store.Add(ctx, rec); err != nil {
			s.logger.Warn("failed to preload food", "name", food.Name, "error", err)
		}
	}
	s.logger.Info("preloaded favourite dishes into vector store", "count", len(foods))
	return nil
}

// AddText embeds and stores one text. Failures are logged, not returned;
// memory writes are best-effort.
func (s *Semantic) AddText(ctx context.Context, text string, metadata map[string]string) {
	if !s.Enabled() || strings.TrimSpace(text) == "" {
		return
	}
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		s.logger.Warn("failed to embed text for memory", "error", err)
		return
	}
	rec := Record{
		ID:       uuid.NewString(),
		Content:  text,
		Vector:   vectors[0],
		Metadata: metadata,
	}
	if err := s.store.Add(ctx, rec); err != nil {
		s.logger.Warn("failed to add text to vector store", "error", err)
	}
}

// SearchSimilar returns the contents of the n records closest to query.
// Failures are logged and an empty slice returned.
func (s *Semantic) SearchSimilar(ctx context.Context, query string, n int) []string {
	if !s.Enabled() || strings.TrimSpace(query) == "" || n <= 0 {
		return nil
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		s.logger.Warn("failed to embed query", "error", err)
		return nil
	}
	records, err := s.store.Search(ctx, vectors[0], n)
	if err != nil {
		s.logger.Warn("failed to search vector store", "error", err)
		return nil
	}
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Content)
	}
	return out
}
