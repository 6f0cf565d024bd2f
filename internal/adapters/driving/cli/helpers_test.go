package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/sercha-rag/internal/acquirers/web"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/fetch"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

const readmeText = "Install widgets with make install."

// repoAcquirer serves a fixed README for every repository descriptor.
type repoAcquirer struct{}

func (repoAcquirer) Kind() domain.SourceKind { return domain.SourceKindRepository }

func (repoAcquirer) Acquire(_ context.Context, desc domain.SourceDescriptor) (driven.Acquisition, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	doc := domain.Document{
		URI:      desc.URL + "/README.md",
		Title:    "README.md",
		Content:  readmeText,
		Metadata: map[string]any{domain.MetaPath: "README.md"},
	}
	return staticAcquisition{report: domain.AcquisitionReport{
		Items: []domain.ItemResult{{Locator: "README.md", Document: &doc}},
	}}, nil
}

type staticAcquisition struct {
	report domain.AcquisitionReport
}

func (a staticAcquisition) Report() domain.AcquisitionReport { return a.report }

func (staticAcquisition) Close() error { return nil }

// setupTestServices wires real services over the in-memory store and
// returns a cleanup that restores the previous services and flags.
func setupTestServices() func() {
	oldIngestion, oldBatch := ingestionService, batchService
	oldRetrieval, oldSource, oldSettings := retrievalService, sourceService, settingsService

	store := memory.NewStore()
	embedder := hashing.NewEmbeddingService(64)
	pipeline, err := postprocessors.NewDefaultPipeline(domain.ChunkingSettings{ChunkSize: 200, Overlap: 40})
	if err != nil {
		panic(err)
	}

	ingestion := services.NewIngestionPipeline(store.SourceStore(), store.ChunkStore(), embedder, pipeline,
		repoAcquirer{},
		web.New(fetch.NewHTTPFetcher(nil)),
	)
	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetEnvLookup(func(string) (string, bool) { return "", false })

	SetServices(Services{
		Ingestion: ingestion,
		Batch:     services.NewBatchIngestor(ingestion),
		Retrieval: services.NewRetrievalEngine(store.ChunkStore(), embedder,
			domain.RetrievalSettings{K: 3, DistanceThreshold: 0.5}),
		Source:   services.NewSourceService(store.SourceStore(), store.ChunkStore(), embedder),
		Settings: settings,
	})

	return func() {
		ingestionService, batchService = oldIngestion, oldBatch
		retrievalService, sourceService, settingsService = oldRetrieval, oldSource, oldSettings
		searchK, searchThreshold, searchJSON = 0, 0, false
		ingestName = ""
		verbose = false
		_ = store.Close()
	}
}

// execute runs the root command with args and returns everything it printed.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// ingestReadme adds the fixed repository and returns its source ID.
func ingestReadme(t *testing.T) string {
	t.Helper()
	result, err := ingestionService.IngestRepository(context.Background(), "https://example.com/widgets.git", "")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return result.SourceID
}
