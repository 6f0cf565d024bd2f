package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.RetrievalService = (*RetrievalEngine)(nil)

// RetrievalEngine embeds queries and ranks stored chunks by L2 distance.
// Ranking and thresholding happen in the chunk store.
type RetrievalEngine struct {
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService
	composer *ResponseComposer
	defaults domain.RetrievalSettings
}

// NewRetrievalEngine creates a retrieval engine.
// Zero fields in defaults fall back to the package defaults.
func NewRetrievalEngine(
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
	defaults domain.RetrievalSettings,
) *RetrievalEngine {
	if defaults.K <= 0 {
		defaults.K = domain.DefaultSearchK
	}
	if defaults.DistanceThreshold <= 0 {
		defaults.DistanceThreshold = domain.DefaultDistanceThreshold
	}
	return &RetrievalEngine{
		chunks:   chunks,
		embedder: embedder,
		composer: NewResponseComposer(defaults.ExcerptChars),
		defaults: defaults,
	}
}

// Search returns up to K chunks closer than the threshold, ascending by
// distance with ties in insertion order. An empty corpus or no match gives
// an empty slice.
func (e *RetrievalEngine) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	k := opts.K
	if k <= 0 {
		k = e.defaults.K
	}
	threshold := opts.DistanceThreshold
	if threshold <= 0 {
		threshold = e.defaults.DistanceThreshold
	}

	total, err := e.chunks.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if total == 0 {
		logger.Debug("search %q: corpus is empty", query)
		return []domain.RetrievalResult{}, nil
	}

	if e.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := e.chunks.QueryNearest(ctx, vec, k, threshold)
	if err != nil {
		return nil, fmt.Errorf("query nearest: %w", err)
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}

	logger.Debug("search %q: %d results (k=%d, threshold=%.2f)", query, len(results), k, threshold)
	return results, nil
}

// ComposeResponse searches with the configured defaults and composes an answer.
func (e *RetrievalEngine) ComposeResponse(ctx context.Context, query string) (string, error) {
	results, err := e.Search(ctx, query, domain.SearchOptions{})
	if err != nil {
		return "", err
	}
	return e.composer.Compose(query, results), nil
}
