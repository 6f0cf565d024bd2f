package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// pingTimeout bounds the embedder connectivity check in Health.
const pingTimeout = 5 * time.Second

// SourceService manages the source registry and corpus statistics.
type SourceService struct {
	sources  driven.SourceStore
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService
	now      func() time.Time

	pingTimeout time.Duration
}

// NewSourceService creates a new source service.
// The embedder is only used by Health and may be nil.
func NewSourceService(
	sources driven.SourceStore,
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
) *SourceService {
	return &SourceService{
		sources:  sources,
		chunks:   chunks,
		embedder: embedder,
		now:      time.Now,

		pingTimeout: pingTimeout,
	}
}

// List returns all sources, newest first.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.sources.List(ctx)
}

// Get retrieves a source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.sources.Get(ctx, id)
}

// Delete removes a source and its chunks and returns how many chunks went.
func (s *SourceService) Delete(ctx context.Context, id string) (int, error) {
	deleted, err := s.sources.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", id, err)
	}

	logger.Info("deleted source %s and %d chunks", id, deleted)
	return deleted, nil
}

// Stats summarises the corpus.
func (s *SourceService) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	counts, err := s.chunks.CountBySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	total, err := s.chunks.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	dim, err := s.chunks.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("read dimension: %w", err)
	}
	if dim == 0 && s.embedder != nil {
		dim = s.embedder.Dimensions()
	}

	stats := &domain.CorpusStats{
		TotalChunks:        total,
		TotalSources:       len(sources),
		PerSource:          make([]domain.SourceChunkCount, 0, len(sources)),
		EmbeddingDimension: dim,
		ByKind:             make(map[domain.SourceKind]int),
		ByStatus:           make(map[domain.SourceStatus]int),
	}
	for _, src := range sources {
		stats.PerSource = append(stats.PerSource, domain.SourceChunkCount{
			SourceID: src.ID,
			Name:     src.Name,
			Count:    counts[src.ID],
		})
		stats.ByKind[src.Kind]++
		stats.ByStatus[src.Status]++
	}
	sort.SliceStable(stats.PerSource, func(i, j int) bool {
		return stats.PerSource[i].Count > stats.PerSource[j].Count
	})
	return stats, nil
}

// Reconcile moves sources stuck in processing for longer than olderThan to
// failed. Such sources are left behind when a process dies mid-ingestion.
func (s *SourceService) Reconcile(ctx context.Context, olderThan time.Duration) ([]domain.Source, error) {
	if olderThan <= 0 {
		olderThan = domain.DefaultReconcileAfter
	}
	cutoff := s.now().Add(-olderThan)

	stale, err := s.sources.ListStale(ctx, domain.SourceStatusProcessing, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale sources: %w", err)
	}

	reconciled := make([]domain.Source, 0, len(stale))
	for _, src := range stale {
		if err := s.sources.SetStatus(ctx, src.ID, domain.SourceStatusFailed); err != nil {
			return reconciled, fmt.Errorf("fail source %s: %w", src.ID, err)
		}
		src.Status = domain.SourceStatusFailed
		reconciled = append(reconciled, src)
		logger.Warn("source %q (%s) was stuck in processing since %s, marked failed",
			src.Name, src.ID, src.UpdatedAt.Format(time.RFC3339))
	}
	return reconciled, nil
}

// Health pings the store and the embedder.
func (s *SourceService) Health(ctx context.Context) domain.Health {
	h := domain.Health{Healthy: true}

	if err := s.chunks.Ping(ctx); err != nil {
		h.Healthy = false
		h.StoreError = err.Error()
	}

	if s.embedder == nil {
		h.Healthy = false
		h.EmbedError = domain.ErrEmbeddingUnavailable.Error()
		return h
	}
	h.EmbedderName = s.embedder.ModelName()
	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	if err := s.embedder.Ping(pingCtx); err != nil {
		h.Healthy = false
		h.EmbedError = fmt.Sprintf("%v. Check [embedding] in config.toml or use provider \"hashing\"", err)
	}
	return h
}
