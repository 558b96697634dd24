package retrieval

import (
	"context"

	"github.com/carebase/carebase/internal/domain"
)

// SnapshotProvider hands out the current corpus generation.
type SnapshotProvider interface {
	Get(ctx context.Context) (*domain.Snapshot, error)
}

// Locator finds customer documents by deterministic text matching.
type Locator interface {
	Locate(snap *domain.Snapshot, query string) domain.MatchResult
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
