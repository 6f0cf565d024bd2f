package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SourceService manages the source registry.
type SourceService interface {
	// List returns all sources, newest first.
	List(ctx context.Context) ([]domain.Source, error)

	// Get retrieves a source by ID.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// Delete removes a source and its chunks, returning the number of
	// chunks removed. Returns domain.ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) (int, error)

	// Stats summarises the corpus.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// Reconcile fails sources that have been processing for longer than
	// olderThan and returns them.
	Reconcile(ctx context.Context, olderThan time.Duration) ([]domain.Source, error)

	// Health reports store and embedder reachability.
	Health(ctx context.Context) domain.Health
}
