// Package hashing provides an offline embedding service based on feature hashing.
//
// Words and character trigrams are hashed into a fixed number of signed
// buckets and the result is L2-normalised. Texts that share vocabulary land
// close together, which is enough for local use and tests without a model
// server.
package hashing

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ModelName is reported for every hashing service.
const ModelName = "feature-hashing"

// trigramWeight scales character trigrams relative to whole words.
const trigramWeight = 0.5

// EmbeddingService embeds text without any network access.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder. Non-positive dimensions use the default.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = domain.DefaultEmbeddingDims
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the normalised hashed feature vector of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := embedding.CheckText(text); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	for _, word := range tokenize(text) {
		s.add(vec, "w:"+word, 1)
		runes := []rune(word)
		for i := 0; i+3 <= len(runes); i++ {
			s.add(vec, "t:"+string(runes[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dimensions)
	if norm == 0 {
		// Only reachable when every feature cancelled out.
		out[0] = 1
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := embedding.CheckTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *EmbeddingService) add(vec []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(len(vec)))
	if h&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
// Text without any letters or digits yields its whitespace-separated fields instead.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		words = strings.Fields(lower)
	}
	return words
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
