package services

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure BatchIngestor implements the interface.
var _ driving.BatchService = (*BatchIngestor)(nil)

// BatchIngestor ingests a list of descriptors one after another by calling
// the ingestion service directly.
type BatchIngestor struct {
	ingestion driving.IngestionService
}

// NewBatchIngestor creates a batch ingestor.
func NewBatchIngestor(ingestion driving.IngestionService) *BatchIngestor {
	return &BatchIngestor{ingestion: ingestion}
}

// Run ingests every descriptor in order. Once ctx is done the remaining
// entries are recorded as failed without being attempted.
func (b *BatchIngestor) Run(ctx context.Context, descs []domain.SourceDescriptor) domain.BatchOutcome {
	outcome := domain.BatchOutcome{Results: make([]domain.BatchItemResult, 0, len(descs))}

	for i, desc := range descs {
		item := domain.BatchItemResult{Descriptor: desc}

		if err := ctx.Err(); err != nil {
			item.Status = domain.BatchItemFailed
			item.Err = err
			outcome.Results = append(outcome.Results, item)
			continue
		}

		logger.Info("batch item %d/%d: %s %q", i+1, len(descs), desc.Kind, desc.DisplayName())
		result, err := b.ingestion.Ingest(ctx, desc)
		item.SourceID = result.SourceID
		item.ChunkCount = result.ChunkCount
		if err != nil {
			item.Status = domain.BatchItemFailed
			item.Err = err
			logger.Warn("batch item %d failed: %v", i+1, err)
		} else {
			item.Status = domain.BatchItemSuccess
		}
		outcome.Results = append(outcome.Results, item)
	}

	logger.Info("batch complete: %d succeeded, %d failed", outcome.Succeeded(), outcome.Failed())
	return outcome
}
