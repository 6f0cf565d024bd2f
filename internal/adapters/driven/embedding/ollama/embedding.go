// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = domain.DefaultOllamaURL
	DefaultModel      = domain.DefaultEmbeddingModel
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = domain.DefaultEmbeddingDims
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions is the expected vector size; responses of another size are rejected.
	Dimensions int
}

// EmbeddingService calls /api/embed, which takes every text of a batch in
// one request.
type EmbeddingService struct {
	api        *embedding.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		api:        embedding.NewClient("ollama", cfg.BaseURL, cfg.Timeout, nil),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := embedding.CheckTexts(texts); err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := s.api.PostJSON(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: ollama returned %d embeddings for %d texts",
			domain.ErrEmbedding, len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, raw := range resp.Embeddings {
		vec := embedding.ToFloat32(raw)
		if err := embedding.CheckVector(vec, s.dimensions); err != nil {
			return nil, fmt.Errorf("ollama model %s: %w", s.model, err)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the server is up via /api/tags, which runs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Check(ctx, "/api/tags")
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
