package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Sources held in the knowledge base, newest first",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Chunk and source counts for the knowledge base",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{sourceId}",
		Name:        "source",
		Description: "A single source with its status and chunk count",
		MIMEType:    "application/json",
	}, s.handleSourceResource)
}

// sourceInfo is the JSON shape of a source.
type sourceInfo struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Origin     string            `json:"origin,omitempty"`
	Status     string            `json:"status"`
	ChunkCount int               `json:"chunk_count"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// handleSourcesResource returns a list of all sources.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Source == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	infos := make([]sourceInfo, len(sources))
	for i := range sources {
		src := &sources[i]
		infos[i] = sourceInfo{
			ID:         src.ID,
			Name:       src.Name,
			Kind:       src.Kind.String(),
			Origin:     src.Origin,
			Status:     src.Status.String(),
			ChunkCount: src.ChunkCount,
			CreatedAt:  src.CreatedAt,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleSourceResource returns one source by ID.
func (s *Server) handleSourceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Source == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sourceID := extractSourceID(req.Params.URI)
	if sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	src, err := s.ports.Source.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("getting source: %w", err)
	}

	data, err := json.MarshalIndent(sourceInfo{
		ID:         src.ID,
		Name:       src.Name,
		Kind:       src.Kind.String(),
		Origin:     src.Origin,
		Status:     src.Status.String(),
		ChunkCount: src.ChunkCount,
		Metadata:   src.Metadata,
		CreatedAt:  src.CreatedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling source: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleStatsResource returns corpus statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Source == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Source.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}

	type perSource struct {
		SourceID string `json:"source_id"`
		Name     string `json:"name"`
		Chunks   int    `json:"chunks"`
	}
	out := struct {
		TotalChunks        int            `json:"total_chunks"`
		TotalSources       int            `json:"total_sources"`
		EmbeddingDimension int            `json:"embedding_dimension"`
		ByKind             map[string]int `json:"by_kind"`
		ByStatus           map[string]int `json:"by_status"`
		PerSource          []perSource    `json:"per_source"`
	}{
		TotalChunks:        stats.TotalChunks,
		TotalSources:       stats.TotalSources,
		EmbeddingDimension: stats.EmbeddingDimension,
		ByKind:             make(map[string]int, len(stats.ByKind)),
		ByStatus:           make(map[string]int, len(stats.ByStatus)),
		PerSource:          make([]perSource, len(stats.PerSource)),
	}
	for k, v := range stats.ByKind {
		out.ByKind[string(k)] = v
	}
	for k, v := range stats.ByStatus {
		out.ByStatus[string(k)] = v
	}
	for i, ps := range stats.PerSource {
		out.PerSource[i] = perSource{SourceID: ps.SourceID, Name: ps.Name, Chunks: ps.Count}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractSourceID extracts the source ID from a URI like sercha-rag://sources/{sourceId}.
func extractSourceID(uri string) string {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
