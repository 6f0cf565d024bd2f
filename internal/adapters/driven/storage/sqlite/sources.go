package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

const sourceColumns = `id, name, kind, origin, status, chunk_count, metadata, created_at, updated_at`

// Create stores a new pending source.
func (s *sourceStore) Create(ctx context.Context, source domain.Source) error {
	if source.Status != domain.SourceStatusPending {
		return fmt.Errorf("%w: new source must be pending, got %s", domain.ErrInvalidTransition, source.Status)
	}

	metadataJSON, err := json.Marshal(source.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = source.CreatedAt
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, source.ID, source.Name, string(source.Kind), source.Origin, string(source.Status),
		source.ChunkCount, string(metadataJSON), source.CreatedAt.UTC(), source.UpdatedAt.UTC())
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: source %s: %v", domain.ErrInvalidInput, source.ID, err)
		}
		return fmt.Errorf("creating source: %w", err)
	}
	return nil
}

// SetStatus moves a source to status if the transition is legal.
// The read and the conditional update share a transaction.
func (s *sourceStore) SetStatus(ctx context.Context, id string, status domain.SourceStatus) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current string
	if err := tx.QueryRowContext(ctx, "SELECT status FROM sources WHERE id = ?", id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reading status: %w", err)
	}

	from := domain.SourceStatus(current)
	if !from.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, status)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE sources SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(status), time.Now().UTC(), id, current); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SetChunkCount records the number of persisted chunks.
func (s *sourceStore) SetChunkCount(ctx context.Context, id string, n int) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE sources SET chunk_count = ?, updated_at = ? WHERE id = ?",
		n, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating chunk count: %w", err)
	}
	return requireAffected(res)
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return source, err
}

// List returns all sources, newest first.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	return scanSources(rows)
}

// ListStale returns sources in status whose last update precedes cutoff.
func (s *sourceStore) ListStale(ctx context.Context, status domain.SourceStatus, cutoff time.Time) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE status = ? ORDER BY created_at, rowid`, string(status))
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	all, err := scanSources(rows)
	if err != nil {
		return nil, err
	}

	var stale []domain.Source
	for _, src := range all {
		if src.UpdatedAt.Before(cutoff) {
			stale = append(stale, src)
		}
	}
	return stale, nil
}

// Delete removes a source. Its chunks are removed by cascade.
func (s *sourceStore) Delete(ctx context.Context, id string) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var chunks int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE source_id = ?", id).Scan(&chunks); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting source: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return chunks, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var kind, status, metadataJSON string
	if err := row.Scan(&source.ID, &source.Name, &kind, &source.Origin, &status,
		&source.ChunkCount, &metadataJSON, &source.CreatedAt, &source.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	source.Kind = domain.SourceKind(kind)
	source.Status = domain.SourceStatus(status)

	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &source.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &source, nil
}

func scanSources(rows *sql.Rows) ([]domain.Source, error) {
	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
