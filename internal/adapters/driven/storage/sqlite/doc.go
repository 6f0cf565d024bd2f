// Package sqlite provides the SQLite-backed chunk store and source registry.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - SourceStore: Source registry with validated status transitions
//   - ChunkStore: Chunk persistence and nearest-neighbour queries
//
// # Vector Distance
//
// Embeddings are stored as little-endian float32 blobs. The store registers a
// deterministic SQL function, vec_distance_l2(a, b), and ranks chunks with it
// inside the database: a brute-force scan filtered by threshold and ordered by
// distance then insertion sequence.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/knowledge.db
//
// # Thread Safety
//
// All operations are thread-safe. Chunk batches are written in one
// transaction, so readers in WAL mode never see part of a batch.
package sqlite
