// Command sercha-rag ingests repositories and web pages into a local
// knowledge base and answers questions from it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/acquirers/repository"
	"github.com/custodia-labs/sercha-rag/internal/acquirers/web"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/clone/gitcli"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/clone/githubarchive"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/fetch"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A .env file in the working directory may carry SERCHA_RAG_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("ignoring .env: %v", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading settings: %v\n", err)
		return err
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening knowledge base: %v\n", err)
		return err
	}
	defer store.Close()

	// Commands that need no embeddings (sources, config, stats) still work
	// when the provider is misconfigured.
	embedder, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		logger.Warn("embedding disabled: %v", err)
	} else {
		defer embedder.Close()
	}

	cloner, err := newCloner(settings.Acquisition)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: building chunker: %v\n", err)
		return err
	}

	ingestion := services.NewIngestionPipeline(
		store.SourceStore(),
		store.ChunkStore(),
		embedder,
		pipeline,
		repository.New(cloner,
			repository.WithWorkDir(settings.Acquisition.WorkDir),
			repository.WithExtensions(settings.Acquisition.Extensions),
		),
		web.New(fetch.NewHTTPFetcher(nil),
			web.WithTimeout(settings.Acquisition.FetchTimeout),
			web.WithRate(settings.Acquisition.FetchRate),
		),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingestion: ingestion,
		Batch:     services.NewBatchIngestor(ingestion),
		Retrieval: services.NewRetrievalEngine(store.ChunkStore(), embedder, settings.Retrieval),
		Source:    services.NewSourceService(store.SourceStore(), store.ChunkStore(), embedder),
		Settings:  settingsService,
	})

	return cli.Execute(ctx)
}

func newCloner(settings domain.AcquisitionSettings) (driven.Cloner, error) {
	if settings.Cloner == "github" {
		c, err := githubarchive.New(settings.GitHubToken)
		if err != nil {
			return nil, fmt.Errorf("creating github cloner: %w", err)
		}
		return c, nil
	}
	return gitcli.New(), nil
}
