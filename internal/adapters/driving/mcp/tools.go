package mcp

import (
	"context"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// previewChars bounds the content returned per search result.
const previewChars = 500

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string  `json:"query" jsonschema:"the text to search the knowledge base for"`
	K         int     `json:"k,omitempty" jsonschema:"maximum number of results (default from config)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"maximum L2 distance of a result (default from config)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Content         string         `json:"content"`
	SourceID        string         `json:"source_id"`
	SourceName      string         `json:"source_name,omitempty"`
	Distance        float64        `json:"distance"`
	SimilarityScore float64        `json:"similarity_score"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// IngestRepositoryInput is the input schema for the ingest_repository tool.
type IngestRepositoryInput struct {
	URL  string `json:"url" jsonschema:"clone URL of the git repository"`
	Name string `json:"name,omitempty" jsonschema:"display name (default: repository name)"`
}

// IngestWebInput is the input schema for the ingest_web tool.
type IngestWebInput struct {
	URLs []string `json:"urls" jsonschema:"web pages to fetch"`
	Name string   `json:"name,omitempty" jsonschema:"display name for the source"`
}

// IngestOutput is the output schema for both ingest tools.
type IngestOutput struct {
	SourceID      string   `json:"source_id"`
	Name          string   `json:"name"`
	DocumentCount int      `json:"document_count"`
	ChunkCount    int      `json:"chunk_count"`
	Skipped       []string `json:"skipped,omitempty"`
}

// registerTools registers the tool handlers. The ingest tools need an
// ingestion port.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the knowledge base chunks closest to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question with excerpts from the knowledge base",
	}, s.handleAsk)

	if s.ports.Ingestion == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_repository",
		Description: "Clone a git repository and add its text files to the knowledge base",
	}, s.handleIngestRepository)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_web",
		Description: "Fetch web pages and add their text to the knowledge base",
	}, s.handleIngestWeb)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{K: input.K, DistanceThreshold: input.Threshold}
	results, err := s.ports.Retrieval.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = SearchResultOutput{
			Content:         preview(r.Chunk.Content),
			SourceID:        r.Chunk.SourceID,
			SourceName:      r.SourceName,
			Distance:        r.Distance,
			SimilarityScore: r.SimilarityScore(),
			Metadata:        r.Metadata(),
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Retrieval.ComposeResponse(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}

// handleIngestRepository handles the ingest_repository tool invocation.
func (s *Server) handleIngestRepository(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestRepositoryInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, IngestOutput{}, ErrIngestionDisabled
	}
	result, err := s.ports.Ingestion.IngestRepository(ctx, input.URL, input.Name)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, ingestOutput(result), nil
}

// handleIngestWeb handles the ingest_web tool invocation.
func (s *Server) handleIngestWeb(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestWebInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, IngestOutput{}, ErrIngestionDisabled
	}
	result, err := s.ports.Ingestion.IngestWeb(ctx, input.URLs, input.Name)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, ingestOutput(result), nil
}

func ingestOutput(result domain.IngestResult) IngestOutput {
	out := IngestOutput{
		SourceID:      result.SourceID,
		Name:          result.Name,
		DocumentCount: result.DocumentCount,
		ChunkCount:    result.ChunkCount,
	}
	for _, item := range result.Skipped {
		reason := item.Locator
		if item.Err != nil {
			reason = item.Err.Error()
		}
		out.Skipped = append(out.Skipped, reason)
	}
	return out
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewChars {
		return s
	}
	return string([]rune(s)[:previewChars]) + "..."
}
