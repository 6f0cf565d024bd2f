// Package embedding holds the checks shared by every embedding adapter.
// Provider adapters live in the subpackages.
package embedding

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// CheckText rejects input that cannot be embedded.
func CheckText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty text", domain.ErrEmbedding)
	}
	return nil
}

// CheckTexts applies CheckText to every element.
func CheckTexts(texts []string) error {
	for i, t := range texts {
		if err := CheckText(t); err != nil {
			return fmt.Errorf("text %d: %w", i, err)
		}
	}
	return nil
}

// CheckVector ensures a provider returned a vector of the configured size.
func CheckVector(vec []float32, dims int) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: provider returned an empty vector", domain.ErrEmbedding)
	}
	if dims > 0 && len(vec) != dims {
		return fmt.Errorf("%w: %w: got %d values, want %d", domain.ErrEmbedding, domain.ErrDimensionMismatch, len(vec), dims)
	}
	return nil
}

// ToFloat32 converts JSON-decoded values to the stored precision.
func ToFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
