// Package memory provides in-memory implementations of the store ports.
// They are used as fakes in service tests and for throwaway sessions.
package memory

import (
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Store holds sources and chunks behind one lock so that cascading
// deletes and atomic chunk batches behave like the SQLite store.
type Store struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
	order   []string
	chunks  []storedChunk
	nextSeq int64
}

// storedChunk is a chunk plus its insertion sequence.
type storedChunk struct {
	seq   int64
	chunk domain.Chunk
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sources: make(map[string]domain.Source),
	}
}

// SourceStore returns the source registry view of this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &SourceStore{store: s}
}

// ChunkStore returns the chunk store view of this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &ChunkStore{store: s}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func copyStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
