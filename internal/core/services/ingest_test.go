package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

var repoFiles = []string{
	"Package hello greets people.\n\nRun it with go run . and pass a name to be greeted by the program.",
	strings.Repeat("Configuration lives in config.toml under the home directory. ", 6),
	"Short note.",
}

func expectedChunks(contents ...string) int {
	n := 0
	for _, c := range contents {
		n += len(chunker.Split(c, 100, 20))
	}
	return n
}

func TestIngestRepository(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{
		docItem("README.md", repoFiles[0]),
		docItem("docs/config.md", repoFiles[1]),
		docItem("NOTES.txt", repoFiles[2]),
	}}

	result, err := f.ingestion(acq).IngestRepository(context.Background(), "https://github.com/octo/hello.git", "")
	require.NoError(t, err)

	want := expectedChunks(repoFiles...)
	assert.Greater(t, want, 3)
	assert.Equal(t, want, result.ChunkCount)
	assert.Equal(t, 3, result.DocumentCount)
	assert.Equal(t, "hello", result.Name)
	assert.Equal(t, 1, acq.closed)

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusCompleted, src.Status)
	assert.Equal(t, want, src.ChunkCount)
	assert.Equal(t, domain.SourceKindRepository, src.Kind)
	assert.Equal(t, "https://github.com/octo/hello.git", src.Origin)

	count, err := f.chunks.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, count)

	dim, err := f.chunks.Dimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testDims, dim)
}

func TestIngest_PositionsRunAcrossSource(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{
		docItem("a.md", repoFiles[1]),
		docItem("b.md", repoFiles[1]),
	}}
	p := f.ingestion(acq)

	specs, err := p.stage(context.Background(), domain.Source{ID: "x", Kind: domain.SourceKindRepository}, []domain.Document{
		*acq.items[0].Document, *acq.items[1].Document,
	})
	require.NoError(t, err)
	perDoc := len(chunker.Split(repoFiles[1], 100, 20))
	require.Len(t, specs, 2*perDoc)
	for i, s := range specs {
		assert.Equal(t, i, s.Position)
		assert.Equal(t, "repository", s.Metadata[domain.MetaSourceKind])
	}
	assert.Equal(t, 1, specs[perDoc].Metadata[domain.MetaDocumentIndex])
	assert.Equal(t, 0, specs[perDoc].Metadata[domain.MetaChunkIndex])
}

func TestIngestWeb_SkippedURLs(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindWeb, items: []domain.ItemResult{
		docItem("https://a.example/", "Page A has some text about installing the tool."),
		skippedItem("https://b.example/", 500),
	}}

	result, err := f.ingestion(acq).IngestWeb(context.Background(),
		[]string{"https://a.example/", "https://b.example/"}, "")
	require.NoError(t, err)

	assert.Equal(t, "Web docs (2 URLs)", result.Name)
	assert.Equal(t, 1, result.DocumentCount)
	assert.Equal(t, 1, result.ChunkCount)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "https://b.example/", result.Skipped[0].Locator)
}

func TestIngest_ZeroDocumentsCompletes(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindWeb, items: []domain.ItemResult{
		skippedItem("https://a.example/", 404),
	}}

	result, err := f.ingestion(acq).IngestWeb(context.Background(), []string{"https://a.example/"}, "docs")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunkCount)

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusCompleted, src.Status)
	assert.Equal(t, 0, src.ChunkCount)
}

func TestIngest_AcquisitionFailure(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, err: errors.New("clone failed")}

	result, err := f.ingestion(acq).IngestRepository(context.Background(), "https://example.com/r.git", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAcquisition))

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, src.Status)

	count, err := f.chunks.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngest_EmbeddingFailure(t *testing.T) {
	f := newFixture(t)
	f.embedder = failingEmbedder{hashing.NewEmbeddingService(testDims)}
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{docItem("a.md", "content")}}

	result, err := f.ingestion(acq).IngestRepository(context.Background(), "https://example.com/r.git", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbedding))
	assert.Equal(t, 1, acq.closed)

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, src.Status)

	count, err := f.chunks.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngest_EmbeddingDimensionMismatch(t *testing.T) {
	f := newFixture(t)
	f.embedder = wrongDimsEmbedder{hashing.NewEmbeddingService(testDims)}
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{docItem("a.md", "content")}}

	_, err := f.ingestion(acq).IngestRepository(context.Background(), "https://example.com/r.git", "")
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestIngest_PersistenceFailureIsAtomic(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{
		docItem("a.md", repoFiles[1]),
	}}
	p := NewIngestionPipeline(f.sources, failingWriteStore{f.chunks}, f.embedder, f.pipeline, acq)

	result, err := p.IngestRepository(context.Background(), "https://example.com/r.git", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, src.Status)

	count, err := f.chunks.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngest_CompletionFailureMarksSourceFailed(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{
		docItem("a.md", repoFiles[0]),
	}}
	p := NewIngestionPipeline(refusingCompleteStore{f.sources}, f.chunks, f.embedder, f.pipeline, acq)

	result, err := p.IngestRepository(context.Background(), "https://example.com/r.git", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complete source")

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, src.Status)
}

func TestIngest_CorpusDimensionMismatch(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{docItem("a.md", "first corpus")}}
	_, err := f.ingestion(acq).IngestRepository(context.Background(), "https://example.com/a.git", "")
	require.NoError(t, err)

	f.embedder = hashing.NewEmbeddingService(testDims * 2)
	result, err := f.ingestion(acq).IngestRepository(context.Background(), "https://example.com/b.git", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	src, err := f.sources.Get(context.Background(), result.SourceID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, src.Status)
}

func TestIngest_EmbedsInBatches(t *testing.T) {
	f := newFixture(t)
	acq := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{
		docItem("a.md", repoFiles[1]),
	}}
	p := f.ingestion(acq)
	p.SetEmbedBatchSize(1)

	result, err := p.IngestRepository(context.Background(), "https://example.com/r.git", "")
	require.NoError(t, err)
	assert.Equal(t, expectedChunks(repoFiles[1]), result.ChunkCount)
}

func TestIngest_InvalidDescriptor(t *testing.T) {
	f := newFixture(t)
	p := f.ingestion(&fakeAcquirer{kind: domain.SourceKindRepository})

	_, err := p.IngestRepository(context.Background(), "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = p.IngestWeb(context.Background(), []string{"https://a.example/"}, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "no web acquirer registered")

	sources, err := f.sources.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestIngest_SeparateRunsAreIndependent(t *testing.T) {
	f := newFixture(t)
	good := &fakeAcquirer{kind: domain.SourceKindRepository, items: []domain.ItemResult{docItem("a.md", "kept content")}}
	_, err := f.ingestion(good).IngestRepository(context.Background(), "https://example.com/a.git", "")
	require.NoError(t, err)

	bad := &fakeAcquirer{kind: domain.SourceKindRepository, err: errors.New("clone failed")}
	_, err = f.ingestion(bad).IngestRepository(context.Background(), "https://example.com/b.git", "")
	require.Error(t, err)

	count, err := f.chunks.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
