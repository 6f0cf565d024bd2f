package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChunkStore persists embedded chunks and answers distance queries.
type ChunkStore interface {
	// CreateChunk persists a single chunk and returns its ID.
	CreateChunk(ctx context.Context, spec domain.ChunkSpec) (string, error)

	// AtomicWrite persists every spec or none of them.
	// Readers never observe a partially-written set.
	// Returns the IDs in spec order.
	AtomicWrite(ctx context.Context, specs []domain.ChunkSpec) ([]string, error)

	// QueryNearest returns chunks with L2 distance strictly below maxDistance,
	// ordered by ascending distance then insertion order, at most limit long.
	QueryNearest(ctx context.Context, embedding []float32, limit int, maxDistance float64) ([]domain.RetrievalResult, error)

	// DeleteChunks removes every chunk of a source and returns how many were removed.
	DeleteChunks(ctx context.Context, sourceID string) (int, error)

	// CountChunks returns the total number of chunks in the corpus.
	CountChunks(ctx context.Context) (int, error)

	// CountBySource returns the number of chunks per source ID.
	CountBySource(ctx context.Context) (map[string]int, error)

	// Dimension returns the vector length shared by stored chunks,
	// or zero when the corpus is empty.
	Dimension(ctx context.Context) (int, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
