package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalService answers queries against the knowledge base.
type RetrievalService interface {
	// Search returns the closest chunks, ascending by distance.
	// No match is an empty slice, not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RetrievalResult, error)

	// ComposeResponse searches with the configured defaults and assembles
	// a deterministic answer from the results.
	ComposeResponse(ctx context.Context, query string) (string, error)
}
