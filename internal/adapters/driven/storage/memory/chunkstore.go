package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Nearest-neighbour queries are a brute-force L2 scan.
type ChunkStore struct {
	store *Store
}

// CreateChunk persists a single chunk.
func (c *ChunkStore) CreateChunk(ctx context.Context, spec domain.ChunkSpec) (string, error) {
	ids, err := c.AtomicWrite(ctx, []domain.ChunkSpec{spec})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AtomicWrite validates the whole batch before appending any of it.
func (c *ChunkStore) AtomicWrite(_ context.Context, specs []domain.ChunkSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension()
	if dim == 0 {
		dim = len(specs[0].Embedding)
	}

	taken := make(map[string]map[int]bool)
	for _, sc := range s.chunks {
		markPosition(taken, sc.chunk.SourceID, sc.chunk.Position)
	}

	for _, spec := range specs {
		if _, ok := s.sources[spec.SourceID]; !ok {
			return nil, fmt.Errorf("%w: unknown source %s", domain.ErrPersistence, spec.SourceID)
		}
		if len(spec.Embedding) == 0 || len(spec.Embedding) != dim {
			return nil, fmt.Errorf("%w: %w: chunk %d of source %s has %d values, corpus has %d",
				domain.ErrPersistence, domain.ErrDimensionMismatch, spec.Position, spec.SourceID, len(spec.Embedding), dim)
		}
		if taken[spec.SourceID][spec.Position] {
			return nil, fmt.Errorf("%w: duplicate position %d for source %s",
				domain.ErrPersistence, spec.Position, spec.SourceID)
		}
		markPosition(taken, spec.SourceID, spec.Position)
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		s.nextSeq++
		chunk := domain.Chunk{
			ID:        uuid.New().String(),
			SourceID:  spec.SourceID,
			Content:   spec.Content,
			Embedding: append([]float32(nil), spec.Embedding...),
			Position:  spec.Position,
			Metadata:  domain.MergeMetadata(spec.Metadata, nil),
			CreatedAt: now,
		}
		s.chunks = append(s.chunks, storedChunk{seq: s.nextSeq, chunk: chunk})
		ids = append(ids, chunk.ID)
	}
	return ids, nil
}

func markPosition(taken map[string]map[int]bool, sourceID string, pos int) {
	if taken[sourceID] == nil {
		taken[sourceID] = make(map[int]bool)
	}
	taken[sourceID][pos] = true
}

// QueryNearest scans every chunk and keeps those under maxDistance.
func (c *ChunkStore) QueryNearest(
	_ context.Context,
	embedding []float32,
	limit int,
	maxDistance float64,
) ([]domain.RetrievalResult, error) {
	if limit <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	type candidate struct {
		seq    int64
		result domain.RetrievalResult
	}

	var candidates []candidate
	for _, sc := range s.chunks {
		d, ok := domain.L2Distance(embedding, sc.chunk.Embedding)
		if !ok || d >= maxDistance {
			continue
		}
		source := s.sources[sc.chunk.SourceID]
		candidates = append(candidates, candidate{
			seq: sc.seq,
			result: domain.RetrievalResult{
				Chunk:      sc.chunk,
				Distance:   d,
				SourceName: source.Name,
				SourceKind: source.Kind,
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].result.Distance != candidates[j].result.Distance {
			return candidates[i].result.Distance < candidates[j].result.Distance
		}
		return candidates[i].seq < candidates[j].seq
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]domain.RetrievalResult, len(candidates))
	for i, cand := range candidates {
		results[i] = cand.result
	}
	return results, nil
}

// DeleteChunks removes all chunks of a source.
func (c *ChunkStore) DeleteChunks(_ context.Context, sourceID string) (int, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.store.removeChunks(sourceID), nil
}

// CountChunks returns the corpus size.
func (c *ChunkStore) CountChunks(_ context.Context) (int, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return len(c.store.chunks), nil
}

// CountBySource returns chunk counts keyed by source ID.
func (c *ChunkStore) CountBySource(_ context.Context) (map[string]int, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	counts := make(map[string]int)
	for _, sc := range c.store.chunks {
		counts[sc.chunk.SourceID]++
	}
	return counts, nil
}

// Dimension returns the stored vector length, zero for an empty corpus.
func (c *ChunkStore) Dimension(_ context.Context) (int, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.store.dimension(), nil
}

// Ping always succeeds.
func (c *ChunkStore) Ping(_ context.Context) error {
	return nil
}

// dimension must be called with the lock held.
func (s *Store) dimension() int {
	if len(s.chunks) == 0 {
		return 0
	}
	return len(s.chunks[0].chunk.Embedding)
}

// removeChunks must be called with the write lock held.
func (s *Store) removeChunks(sourceID string) int {
	kept := s.chunks[:0]
	removed := 0
	for _, sc := range s.chunks {
		if sc.chunk.SourceID == sourceID {
			removed++
			continue
		}
		kept = append(kept, sc)
	}
	s.chunks = kept
	return removed
}
