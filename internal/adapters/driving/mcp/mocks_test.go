package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results  []domain.RetrievalResult
	answer   string
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockRetrievalService) ComposeResponse(_ context.Context, _ string) (string, error) {
	return m.answer, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result   domain.IngestResult
	err      error
	lastURLs []string
}

func (m *mockIngestionService) IngestRepository(_ context.Context, url, _ string) (domain.IngestResult, error) {
	m.lastURLs = []string{url}
	return m.result, m.err
}

func (m *mockIngestionService) IngestWeb(_ context.Context, urls []string, _ string) (domain.IngestResult, error) {
	m.lastURLs = urls
	return m.result, m.err
}

func (m *mockIngestionService) Ingest(_ context.Context, _ domain.SourceDescriptor) (domain.IngestResult, error) {
	return m.result, m.err
}

// mockSourceService is a mock implementation of driving.SourceService.
type mockSourceService struct {
	sources []domain.Source
	source  *domain.Source
	stats   *domain.CorpusStats
	err     error
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceService) Get(_ context.Context, _ string) (*domain.Source, error) {
	return m.source, m.err
}

func (m *mockSourceService) Delete(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockSourceService) Stats(_ context.Context) (*domain.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockSourceService) Reconcile(_ context.Context, _ time.Duration) ([]domain.Source, error) {
	return nil, m.err
}

func (m *mockSourceService) Health(_ context.Context) domain.Health {
	return domain.Health{Healthy: m.err == nil}
}
