package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestExtractSourceID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid source URI",
			uri:      "sercha-rag://sources/src-123",
			expected: "src-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sources/src-123",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "sercha-rag://sources/src-123/chunks",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSourceID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil source service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, makeReadResourceRequest("sercha-rag://sources"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns sources successfully", func(t *testing.T) {
		mockSource := &mockSourceService{
			sources: []domain.Source{
				{
					ID:         "src-1",
					Name:       "hello",
					Kind:       domain.SourceKindRepository,
					Origin:     "https://github.com/octo/hello.git",
					Status:     domain.SourceStatusCompleted,
					ChunkCount: 12,
				},
			},
		}

		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Source: mockSource})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, makeReadResourceRequest("sercha-rag://sources"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"id": "src-1"`)
		assert.Contains(t, result.Contents[0].Text, `"kind": "repository"`)
		assert.Contains(t, result.Contents[0].Text, `"status": "completed"`)
		assert.Contains(t, result.Contents[0].Text, `"chunk_count": 12`)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockSource := &mockSourceService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Source: mockSource})
		require.NoError(t, err)

		_, err = server.handleSourcesResource(ctx, makeReadResourceRequest("sercha-rag://sources"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sources")
	})
}

func TestServer_handleSourceResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil source service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleSourceResource(ctx, makeReadResourceRequest("sercha-rag://sources/src-1"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Source: &mockSourceService{}})
		require.NoError(t, err)

		_, err = server.handleSourceResource(ctx, makeReadResourceRequest("sercha-rag://invalid/uri"))
		require.Error(t, err)
	})

	t.Run("returns source", func(t *testing.T) {
		mockSource := &mockSourceService{source: &domain.Source{
			ID:       "src-2",
			Name:     "Web docs (2 URLs)",
			Kind:     domain.SourceKindWeb,
			Status:   domain.SourceStatusFailed,
			Metadata: map[string]string{"url_count": "2"},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Source: mockSource})
		require.NoError(t, err)

		result, err := server.handleSourceResource(ctx, makeReadResourceRequest("sercha-rag://sources/src-2"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"status": "failed"`)
		assert.Contains(t, result.Contents[0].Text, `"url_count": "2"`)
	})

	t.Run("not found is returned", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Source: &mockSourceService{err: domain.ErrNotFound}})
		require.NoError(t, err)

		_, err = server.handleSourceResource(ctx, makeReadResourceRequest("sercha-rag://sources/missing"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil source service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleStatsResource(ctx, makeReadResourceRequest("sercha-rag://stats"))
		require.Error(t, err)
	})

	t.Run("returns stats", func(t *testing.T) {
		mockSource := &mockSourceService{stats: &domain.CorpusStats{
			TotalChunks:        14,
			TotalSources:       2,
			EmbeddingDimension: 384,
			ByKind:             map[domain.SourceKind]int{domain.SourceKindWeb: 1, domain.SourceKindRepository: 1},
			ByStatus:           map[domain.SourceStatus]int{domain.SourceStatusCompleted: 2},
			PerSource: []domain.SourceChunkCount{
				{SourceID: "a", Name: "hello", Count: 12},
				{SourceID: "b", Name: "docs", Count: 2},
			},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Source: mockSource})
		require.NoError(t, err)

		result, err := server.handleStatsResource(ctx, makeReadResourceRequest("sercha-rag://stats"))
		require.NoError(t, err)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"total_chunks": 14`)
		assert.Contains(t, text, `"embedding_dimension": 384`)
		assert.Contains(t, text, `"repository": 1`)
		assert.Contains(t, text, `"completed": 2`)
		assert.Contains(t, text, `"name": "hello"`)
	})
}
