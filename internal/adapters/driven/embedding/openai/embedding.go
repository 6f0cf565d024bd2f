// Package openai embeds text with the OpenAI embeddings API or any
// compatible endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// MaxInputsPerRequest is the API limit on inputs in one call.
	// Larger batches are split.
	MaxInputsPerRequest = 2048

	fallbackDimensions = 1536
)

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	APIKey string

	// BaseURL may point at Azure OpenAI or another compatible API.
	BaseURL string

	Model   string
	Timeout time.Duration

	// Dimensions shortens text-embedding-3-* vectors; other models ignore it.
	Dimensions int
}

// EmbeddingService generates embeddings using the OpenAI API.
type EmbeddingService struct {
	api        *embedding.Client
	model      string
	dimensions int
	batchLimit int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewEmbeddingService creates an OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrEmbeddingUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dims := cfg.Dimensions
	if dims == 0 {
		var ok bool
		if dims, ok = domain.EmbeddingDimensions[cfg.Model]; !ok {
			dims = fallbackDimensions
		}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)
	return &EmbeddingService{
		api:        embedding.NewClient("openai", cfg.BaseURL, cfg.Timeout, header),
		model:      cfg.Model,
		dimensions: dims,
		batchLimit: MaxInputsPerRequest,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts, one request per MaxInputsPerRequest inputs.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := embedding.CheckTexts(texts); err != nil {
		return nil, err
	}

	vecs := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchLimit {
		end := min(start+s.batchLimit, len(texts))
		part, err := s.embedRequest(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, part...)
	}
	return vecs, nil
}

func (s *EmbeddingService) embedRequest(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{Model: s.model, Input: texts}
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.api.PostJSON(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	// Results carry their input index; arrival order is not guaranteed.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: openai returned out-of-range index %d", domain.ErrEmbedding, d.Index)
		}
		vecs[d.Index] = embedding.ToFloat32(d.Embedding)
	}
	for i, vec := range vecs {
		if err := embedding.CheckVector(vec, s.dimensions); err != nil {
			return nil, fmt.Errorf("openai text %d: %w", i, err)
		}
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

// Ping checks the API key by listing models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Check(ctx, "/models")
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
