package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// DefaultEmbedBatchSize is the number of chunks sent per EmbedBatch call.
const DefaultEmbedBatchSize = 64

// IngestionPipeline runs acquire, chunk, embed and persist for one source.
// All chunks of a run are written in a single atomic write.
type IngestionPipeline struct {
	sources   driven.SourceStore
	chunks    driven.ChunkStore
	embedder  driven.EmbeddingService
	pipeline  driven.PostProcessorPipeline
	acquirers map[domain.SourceKind]driven.Acquirer
	batchSize int
}

// NewIngestionPipeline creates a pipeline. Each acquirer serves the kind it reports.
func NewIngestionPipeline(
	sources driven.SourceStore,
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	acquirers ...driven.Acquirer,
) *IngestionPipeline {
	p := &IngestionPipeline{
		sources:   sources,
		chunks:    chunks,
		embedder:  embedder,
		pipeline:  pipeline,
		acquirers: make(map[domain.SourceKind]driven.Acquirer, len(acquirers)),
		batchSize: DefaultEmbedBatchSize,
	}
	for _, a := range acquirers {
		p.acquirers[a.Kind()] = a
	}
	return p
}

// SetEmbedBatchSize changes how many chunks are embedded per call.
func (p *IngestionPipeline) SetEmbedBatchSize(n int) {
	if n > 0 {
		p.batchSize = n
	}
}

// IngestRepository clones url and ingests its text files.
func (p *IngestionPipeline) IngestRepository(ctx context.Context, url, name string) (domain.IngestResult, error) {
	return p.Ingest(ctx, domain.SourceDescriptor{
		Kind: domain.SourceKindRepository,
		URL:  url,
		Name: name,
	})
}

// IngestWeb fetches urls and ingests the pages that succeed.
func (p *IngestionPipeline) IngestWeb(ctx context.Context, urls []string, name string) (domain.IngestResult, error) {
	return p.Ingest(ctx, domain.SourceDescriptor{
		Kind: domain.SourceKindWeb,
		URLs: urls,
		Name: name,
	})
}

// Ingest creates a source for desc and fills it.
//
// The source is created pending and moved to processing before acquisition.
// It ends completed with its chunk count, or failed when any step returns an
// error. The failed status is written even if ctx was cancelled.
func (p *IngestionPipeline) Ingest(ctx context.Context, desc domain.SourceDescriptor) (domain.IngestResult, error) {
	if err := desc.Validate(); err != nil {
		return domain.IngestResult{}, err
	}
	acquirer, ok := p.acquirers[desc.Kind]
	if !ok {
		return domain.IngestResult{}, fmt.Errorf("%w: no acquirer for %s sources", domain.ErrInvalidInput, desc.Kind)
	}

	source := domain.Source{
		ID:       uuid.New().String(),
		Name:     desc.DisplayName(),
		Kind:     desc.Kind,
		Origin:   desc.Origin(),
		Status:   domain.SourceStatusPending,
		Metadata: sourceMetadata(desc),
	}
	if err := p.sources.Create(ctx, source); err != nil {
		return domain.IngestResult{}, fmt.Errorf("create source: %w", err)
	}

	result := domain.IngestResult{SourceID: source.ID, Name: source.Name}

	if err := p.sources.SetStatus(ctx, source.ID, domain.SourceStatusProcessing); err != nil {
		return result, p.fail(ctx, source.ID, fmt.Errorf("start processing: %w", err))
	}
	logger.Info("ingesting %s source %q (%s)", source.Kind, source.Name, source.ID)

	run, err := p.run(ctx, acquirer, source, desc)
	if err != nil {
		return result, p.fail(ctx, source.ID, err)
	}
	result.DocumentCount = run.DocumentCount
	result.ChunkCount = run.ChunkCount
	result.Skipped = run.Skipped

	if err := p.sources.SetChunkCount(ctx, source.ID, result.ChunkCount); err != nil {
		return result, p.fail(ctx, source.ID, fmt.Errorf("record chunk count: %w", err))
	}
	if err := p.sources.SetStatus(ctx, source.ID, domain.SourceStatusCompleted); err != nil {
		return result, p.fail(ctx, source.ID, fmt.Errorf("complete source: %w", err))
	}

	logger.Info("source %q completed: %d documents, %d chunks, %d skipped",
		source.Name, result.DocumentCount, result.ChunkCount, len(result.Skipped))
	return result, nil
}

// run acquires, chunks, embeds and writes. The acquisition is closed on every path.
func (p *IngestionPipeline) run(
	ctx context.Context,
	acquirer driven.Acquirer,
	source domain.Source,
	desc domain.SourceDescriptor,
) (domain.IngestResult, error) {
	acq, err := acquirer.Acquire(ctx, desc)
	if err != nil {
		if !errors.Is(err, domain.ErrAcquisition) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrAcquisition, err)
		}
		return domain.IngestResult{}, fmt.Errorf("acquire: %w", err)
	}
	defer func() {
		if cerr := acq.Close(); cerr != nil {
			logger.Warn("release working area for %s: %v", source.ID, cerr)
		}
	}()

	report := acq.Report()
	docs := report.Documents()
	logger.Debug("acquired %d documents, skipped %d", len(docs), len(report.Skipped()))

	specs, err := p.stage(ctx, source, docs)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if err := p.embed(ctx, specs); err != nil {
		return domain.IngestResult{}, err
	}

	ids, err := p.chunks.AtomicWrite(ctx, specs)
	if err != nil {
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		return domain.IngestResult{}, fmt.Errorf("write chunks: %w", err)
	}

	return domain.IngestResult{
		DocumentCount: len(docs),
		ChunkCount:    len(ids),
		Skipped:       report.Skipped(),
	}, nil
}

// stage chunks every document. Positions run across the whole source in
// document order; the chunker's document-local index is kept as chunk_index.
func (p *IngestionPipeline) stage(ctx context.Context, source domain.Source, docs []domain.Document) ([]domain.ChunkSpec, error) {
	var specs []domain.ChunkSpec
	position := 0
	for i := range docs {
		doc := docs[i]
		doc.SourceID = source.ID

		chunks, err := p.pipeline.Process(ctx, &doc)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.URI, err)
		}

		for _, c := range chunks {
			if strings.TrimSpace(c.Content) == "" {
				continue
			}
			specs = append(specs, domain.ChunkSpec{
				SourceID: source.ID,
				Content:  c.Content,
				Position: position,
				Metadata: domain.MergeMetadata(c.Metadata, map[string]any{
					domain.MetaSourceKind:    string(source.Kind),
					domain.MetaDocumentIndex: i,
				}),
			})
			position++
		}
	}
	return specs, nil
}

// embed fills every spec's embedding in batches. Any failure fails the run,
// so no chunk is written without its vector.
func (p *IngestionPipeline) embed(ctx context.Context, specs []domain.ChunkSpec) error {
	if len(specs) == 0 {
		return nil
	}
	if p.embedder == nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	dims := p.embedder.Dimensions()
	for start := 0; start < len(specs); start += p.batchSize {
		end := min(start+p.batchSize, len(specs))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = specs[start+i].Content
		}

		vecs, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if !errors.Is(err, domain.ErrEmbedding) {
				err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
			}
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vecs), len(texts))
		}
		for i, vec := range vecs {
			if len(vec) == 0 || (dims > 0 && len(vec) != dims) {
				return fmt.Errorf("%w: %w: chunk %d has %d values, want %d",
					domain.ErrEmbedding, domain.ErrDimensionMismatch, start+i, len(vec), dims)
			}
			specs[start+i].Embedding = vec
		}
		logger.Debug("embedded chunks %d-%d of %d", start, end-1, len(specs))
	}
	return nil
}

// fail marks the source failed and returns err. The update uses a context
// that outlives cancellation so the registry reflects the true outcome.
func (p *IngestionPipeline) fail(ctx context.Context, sourceID string, err error) error {
	if serr := p.sources.SetStatus(context.WithoutCancel(ctx), sourceID, domain.SourceStatusFailed); serr != nil {
		logger.Error("mark source %s failed: %v", sourceID, serr)
	}
	logger.Error("ingestion of %s failed: %v", sourceID, err)
	return err
}

func sourceMetadata(desc domain.SourceDescriptor) map[string]string {
	meta := make(map[string]string)
	switch desc.Kind {
	case domain.SourceKindRepository:
		meta["repo_name"] = domain.RepositoryName(desc.URL)
	case domain.SourceKindWeb:
		meta["url_count"] = strconv.Itoa(len(desc.URLs))
		meta["urls"] = strings.Join(desc.URLs, "\n")
	}
	return meta
}
