package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// CreateChunk persists a single chunk.
func (s *chunkStore) CreateChunk(ctx context.Context, spec domain.ChunkSpec) (string, error) {
	ids, err := s.AtomicWrite(ctx, []domain.ChunkSpec{spec})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AtomicWrite persists every spec in one transaction.
// Any failure rolls the whole batch back.
func (s *chunkStore) AtomicWrite(ctx context.Context, specs []domain.ChunkSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback() //nolint:errcheck

	dim, err := corpusDimension(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if dim == 0 {
		dim = len(specs[0].Embedding)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_id, content, embedding, position, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing statement: %v", domain.ErrPersistence, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		if len(spec.Embedding) == 0 || len(spec.Embedding) != dim {
			return nil, fmt.Errorf("%w: %w: chunk %d of source %s has %d values, corpus has %d",
				domain.ErrPersistence, domain.ErrDimensionMismatch, spec.Position, spec.SourceID, len(spec.Embedding), dim)
		}

		metadataJSON, err := json.Marshal(spec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: marshalling chunk metadata: %v", domain.ErrPersistence, err)
		}

		id := uuid.New().String()
		if _, err := stmt.ExecContext(ctx, id, spec.SourceID, spec.Content,
			float32SliceToBytes(spec.Embedding), spec.Position, string(metadataJSON), now); err != nil {
			return nil, fmt.Errorf("%w: saving chunk %d: %v", domain.ErrPersistence, spec.Position, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing transaction: %v", domain.ErrPersistence, err)
	}
	return ids, nil
}

// QueryNearest ranks chunks by vec_distance_l2 inside the database.
func (s *chunkStore) QueryNearest(
	ctx context.Context,
	embedding []float32,
	limit int,
	maxDistance float64,
) ([]domain.RetrievalResult, error) {
	if limit <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	// SQLite resolves the distance alias in WHERE and ORDER BY.
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.source_id, c.content, c.embedding, c.position, c.metadata, c.created_at,
			s.name, s.kind, `+distanceFunc+`(c.embedding, ?) AS distance
		FROM chunks c
		JOIN sources s ON s.id = c.source_id
		WHERE distance IS NOT NULL AND distance < ?
		ORDER BY distance ASC, c.seq ASC
		LIMIT ?
	`, float32SliceToBytes(embedding), maxDistance, limit)
	if err != nil {
		return nil, fmt.Errorf("querying nearest chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.RetrievalResult
		var blob []byte
		var metadataJSON, kind string
		if err := rows.Scan(&r.Chunk.ID, &r.Chunk.SourceID, &r.Chunk.Content, &blob,
			&r.Chunk.Position, &metadataJSON, &r.Chunk.CreatedAt,
			&r.SourceName, &kind, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		r.Chunk.Embedding = bytesToFloat32Slice(blob)
		r.SourceKind = domain.SourceKind(kind)
		if metadataJSON != "" && metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &r.Chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
			}
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return results, nil
}

// DeleteChunks removes all chunks of a source.
func (s *chunkStore) DeleteChunks(ctx context.Context, sourceID string) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE source_id = ?", sourceID)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// CountChunks returns the corpus size.
func (s *chunkStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// CountBySource returns chunk counts keyed by source ID.
func (s *chunkStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT source_id, COUNT(*) FROM chunks GROUP BY source_id")
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// Dimension returns the stored vector length, zero for an empty corpus.
func (s *chunkStore) Dimension(ctx context.Context) (int, error) {
	return corpusDimension(ctx, s.store.db)
}

// Ping checks the database is reachable.
func (s *chunkStore) Ping(ctx context.Context) error {
	return s.store.db.PingContext(ctx)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func corpusDimension(ctx context.Context, q queryer) (int, error) {
	var bytes sql.NullInt64
	err := q.QueryRowContext(ctx, "SELECT length(embedding) FROM chunks ORDER BY seq LIMIT 1").Scan(&bytes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading corpus dimension: %w", err)
	}
	return int(bytes.Int64 / 4), nil
}
