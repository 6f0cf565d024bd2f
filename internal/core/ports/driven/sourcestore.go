package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SourceStore is the source registry.
type SourceStore interface {
	// Create stores a new source. The source must be pending.
	Create(ctx context.Context, source domain.Source) error

	// SetStatus moves a source to status.
	// Returns domain.ErrInvalidTransition for illegal moves.
	SetStatus(ctx context.Context, id string, status domain.SourceStatus) error

	// SetChunkCount records the number of persisted chunks.
	SetChunkCount(ctx context.Context, id string, n int) error

	// Get retrieves a source by ID.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all sources, newest first.
	List(ctx context.Context) ([]domain.Source, error)

	// ListStale returns sources in status last updated before cutoff.
	ListStale(ctx context.Context, status domain.SourceStatus, cutoff time.Time) ([]domain.Source, error)

	// Delete removes a source and, by cascade, its chunks, in one transaction.
	// Returns the number of chunks removed with it.
	Delete(ctx context.Context, id string) (int, error)
}
