package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestionService turns remote content into persisted chunks.
type IngestionService interface {
	// IngestRepository clones url and ingests its text files.
	// An empty name is derived from the URL.
	IngestRepository(ctx context.Context, url, name string) (domain.IngestResult, error)

	// IngestWeb fetches urls and ingests the pages that succeed.
	// An empty name becomes "Web docs (N URLs)".
	IngestWeb(ctx context.Context, urls []string, name string) (domain.IngestResult, error)

	// Ingest dispatches on the descriptor kind.
	Ingest(ctx context.Context, desc domain.SourceDescriptor) (domain.IngestResult, error)
}

// BatchService ingests several sources sequentially.
type BatchService interface {
	// Run ingests every descriptor. Failures are recorded per item and
	// never stop the batch.
	Run(ctx context.Context, descs []domain.SourceDescriptor) domain.BatchOutcome
}
