package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

const testDims = 32

// fakeAcquirer returns a fixed report and records whether it was closed.
type fakeAcquirer struct {
	kind   domain.SourceKind
	items  []domain.ItemResult
	err    error
	closed int
}

func (a *fakeAcquirer) Kind() domain.SourceKind { return a.kind }

func (a *fakeAcquirer) Acquire(context.Context, domain.SourceDescriptor) (driven.Acquisition, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &fakeAcquisition{owner: a, report: domain.AcquisitionReport{Items: a.items}}, nil
}

type fakeAcquisition struct {
	owner  *fakeAcquirer
	report domain.AcquisitionReport
}

func (f *fakeAcquisition) Report() domain.AcquisitionReport { return f.report }

func (f *fakeAcquisition) Close() error {
	f.owner.closed++
	return nil
}

func docItem(uri, content string) domain.ItemResult {
	return domain.ItemResult{
		Locator: uri,
		Document: &domain.Document{
			URI:      uri,
			Title:    uri,
			Content:  content,
			Metadata: map[string]any{domain.MetaPath: uri},
		},
	}
}

func skippedItem(uri string, status int) domain.ItemResult {
	return domain.ItemResult{Locator: uri, Err: &domain.FetchError{Locator: uri, StatusCode: status}}
}

// failingEmbedder fails every call.
type failingEmbedder struct {
	*hashing.EmbeddingService
}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("model not loaded")
}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model not loaded")
}

func (failingEmbedder) Ping(context.Context) error {
	return errors.New("model not loaded")
}

// hangingEmbedder never answers a ping before its context ends.
type hangingEmbedder struct {
	*hashing.EmbeddingService
}

func (hangingEmbedder) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// wrongDimsEmbedder returns vectors one value short.
type wrongDimsEmbedder struct {
	*hashing.EmbeddingService
}

func (e wrongDimsEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.EmbeddingService.EmbedBatch(ctx, texts)
	for i := range vecs {
		vecs[i] = vecs[i][1:]
	}
	return vecs, err
}

// failingWriteStore fails AtomicWrite after validating nothing.
type failingWriteStore struct {
	driven.ChunkStore
}

func (failingWriteStore) AtomicWrite(context.Context, []domain.ChunkSpec) ([]string, error) {
	return nil, errors.New("disk full")
}

// refusingCompleteStore rejects the move to completed.
type refusingCompleteStore struct {
	driven.SourceStore
}

func (s refusingCompleteStore) SetStatus(ctx context.Context, id string, status domain.SourceStatus) error {
	if status == domain.SourceStatusCompleted {
		return errors.New("database is locked")
	}
	return s.SourceStore.SetStatus(ctx, id, status)
}

// failingDeleteStore fails every source delete.
type failingDeleteStore struct {
	driven.SourceStore
}

func (failingDeleteStore) Delete(context.Context, string) (int, error) {
	return 0, errors.New("database is locked")
}

type fixture struct {
	store    *memory.Store
	sources  driven.SourceStore
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService
	pipeline driven.PostProcessorPipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	t.Cleanup(func() { _ = store.Close() })

	pipeline, err := postprocessors.NewDefaultPipeline(domain.ChunkingSettings{ChunkSize: 100, Overlap: 20})
	require.NoError(t, err)

	return &fixture{
		store:    store,
		sources:  store.SourceStore(),
		chunks:   store.ChunkStore(),
		embedder: hashing.NewEmbeddingService(testDims),
		pipeline: pipeline,
	}
}

func (f *fixture) ingestion(acquirers ...driven.Acquirer) *IngestionPipeline {
	return NewIngestionPipeline(f.sources, f.chunks, f.embedder, f.pipeline, acquirers...)
}

// vectorEmbedder maps known texts to fixed vectors.
type vectorEmbedder struct {
	vectors map[string][]float32
	dims    int
	calls   int
}

func (e *vectorEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	vec, ok := e.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return vec, nil
}

func (e *vectorEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *vectorEmbedder) Dimensions() int { return e.dims }

func (e *vectorEmbedder) ModelName() string { return "fixed" }

func (e *vectorEmbedder) Ping(context.Context) error { return nil }

func (e *vectorEmbedder) Close() error { return nil }

// seedSource creates a completed source holding one chunk per vector.
func seedSource(t *testing.T, f *fixture, id, name string, kind domain.SourceKind, vectors ...[]float32) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.sources.Create(ctx, domain.Source{
		ID: id, Name: name, Kind: kind, Status: domain.SourceStatusPending,
	}))
	require.NoError(t, f.sources.SetStatus(ctx, id, domain.SourceStatusProcessing))

	specs := make([]domain.ChunkSpec, len(vectors))
	for i, vec := range vectors {
		specs[i] = domain.ChunkSpec{
			SourceID:  id,
			Content:   fmt.Sprintf("%s chunk %d", name, i),
			Embedding: vec,
			Position:  i,
			Metadata:  map[string]any{domain.MetaPath: fmt.Sprintf("file%d.md", i)},
		}
	}
	_, err := f.chunks.AtomicWrite(ctx, specs)
	require.NoError(t, err)
	require.NoError(t, f.sources.SetChunkCount(ctx, id, len(vectors)))
	require.NoError(t, f.sources.SetStatus(ctx, id, domain.SourceStatusCompleted))
}
