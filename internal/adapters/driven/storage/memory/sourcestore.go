package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory implementation of driven.SourceStore.
type SourceStore struct {
	store *Store
}

// Create stores a new pending source.
func (s *SourceStore) Create(_ context.Context, source domain.Source) error {
	if source.Status != domain.SourceStatusPending {
		return fmt.Errorf("%w: new source must be pending, got %s", domain.ErrInvalidTransition, source.Status)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, exists := s.store.sources[source.ID]; exists {
		return fmt.Errorf("%w: source %s already exists", domain.ErrInvalidInput, source.ID)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = source.CreatedAt
	}
	source.Metadata = copyStringMap(source.Metadata)

	s.store.sources[source.ID] = source
	s.store.order = append(s.store.order, source.ID)
	return nil
}

// SetStatus moves a source to status if the transition is legal.
func (s *SourceStore) SetStatus(_ context.Context, id string, status domain.SourceStatus) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	source, ok := s.store.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := source.Transition(status); err != nil {
		return err
	}
	s.store.sources[id] = source
	return nil
}

// SetChunkCount records the number of persisted chunks.
func (s *SourceStore) SetChunkCount(_ context.Context, id string, n int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	source, ok := s.store.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	source.ChunkCount = n
	source.UpdatedAt = time.Now()
	s.store.sources[id] = source
	return nil
}

// Get retrieves a source by ID.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	source, ok := s.store.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	source.Metadata = copyStringMap(source.Metadata)
	return &source, nil
}

// List returns all sources, newest first. Equal timestamps keep
// reverse creation order.
func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	result := make([]domain.Source, 0, len(s.store.order))
	for i := len(s.store.order) - 1; i >= 0; i-- {
		result = append(result, s.store.sources[s.store.order[i]])
	}
	sortNewestFirst(result)
	return result, nil
}

// ListStale returns sources in status last updated before cutoff.
func (s *SourceStore) ListStale(_ context.Context, status domain.SourceStatus, cutoff time.Time) ([]domain.Source, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var result []domain.Source
	for _, id := range s.store.order {
		source := s.store.sources[id]
		if source.Status == status && source.UpdatedAt.Before(cutoff) {
			result = append(result, source)
		}
	}
	return result, nil
}

// Delete removes a source and its chunks.
func (s *SourceStore) Delete(_ context.Context, id string) (int, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.sources[id]; !ok {
		return 0, domain.ErrNotFound
	}
	delete(s.store.sources, id)
	for i, sid := range s.store.order {
		if sid == id {
			s.store.order = append(s.store.order[:i], s.store.order[i+1:]...)
			break
		}
	}
	return s.store.removeChunks(id), nil
}

// sortNewestFirst is a stable insertion sort on CreatedAt, descending.
func sortNewestFirst(sources []domain.Source) {
	for i := 1; i < len(sources); i++ {
		for j := i; j > 0 && sources[j].CreatedAt.After(sources[j-1].CreatedAt); j-- {
			sources[j], sources[j-1] = sources[j-1], sources[j]
		}
	}
}
