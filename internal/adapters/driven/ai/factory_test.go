package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  domain.EmbeddingSettings
		wantModel string
		wantDims  int
		wantErr   bool
	}{
		{
			name:     "unconfigured settings fail",
			settings: domain.EmbeddingSettings{},
			wantErr:  true,
		},
		{
			name:      "hashing provider",
			settings:  domain.EmbeddingSettings{Provider: domain.AIProviderHashing, Dimensions: 64},
			wantModel: "feature-hashing",
			wantDims:  64,
		},
		{
			name: "ollama provider uses known model dimensions",
			settings: domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
			wantDims:  768,
		},
		{
			name: "openai provider",
			settings: domain.EmbeddingSettings{
				Provider:   domain.AIProviderOpenAI,
				APIKey:     "test-key",
				Model:      "text-embedding-3-small",
				Dimensions: 512,
			},
			wantModel: "text-embedding-3-small",
			wantDims:  512,
		},
		{
			name: "openai without key fails",
			settings: domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantErr: true,
		},
		{
			name:     "unknown provider fails",
			settings: domain.EmbeddingSettings{Provider: "anthropic", Model: "x"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateOpenAIEmbedding_ErrorIsUntypedNil(t *testing.T) {
	svc, err := createOpenAIEmbedding(domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	assert.True(t, svc == nil, "want untyped nil")
}
